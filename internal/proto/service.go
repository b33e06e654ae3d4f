// Package proto declares the DeviceLogsService gRPC contract: request and
// response messages, the service descriptor used to register a server, and
// a typed client. Messages travel with the "json" codec registered here.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "devlogs.DeviceLogsService"

const (
	DeviceLogsService_ListUploadedLogs_FullMethodName    = "/devlogs.DeviceLogsService/ListUploadedLogs"
	DeviceLogsService_ListRealtimeDomains_FullMethodName = "/devlogs.DeviceLogsService/ListRealtimeDomains"
	DeviceLogsService_StartUpload_FullMethodName         = "/devlogs.DeviceLogsService/StartUpload"
	DeviceLogsService_CancelUpload_FullMethodName        = "/devlogs.DeviceLogsService/CancelUpload"
	DeviceLogsService_DeleteHistory_FullMethodName       = "/devlogs.DeviceLogsService/DeleteHistory"
	DeviceLogsService_GetDownloadURL_FullMethodName      = "/devlogs.DeviceLogsService/GetDownloadURL"
)

// DeviceLogsServiceServer is the server API for DeviceLogsService.
type DeviceLogsServiceServer interface {
	ListUploadedLogs(context.Context, *ListUploadedLogsRequest) (*ListUploadedLogsResponse, error)
	ListRealtimeDomains(context.Context, *ListRealtimeDomainsRequest) (*ListRealtimeDomainsResponse, error)
	StartUpload(context.Context, *StartUploadRequest) (*StartUploadResponse, error)
	CancelUpload(context.Context, *CancelUploadRequest) (*CancelUploadResponse, error)
	DeleteHistory(context.Context, *DeleteHistoryRequest) (*DeleteHistoryResponse, error)
	GetDownloadURL(context.Context, *GetDownloadURLRequest) (*GetDownloadURLResponse, error)
}

// UnimplementedDeviceLogsServiceServer can be embedded to have forward
// compatible implementations.
type UnimplementedDeviceLogsServiceServer struct{}

func (UnimplementedDeviceLogsServiceServer) ListUploadedLogs(context.Context, *ListUploadedLogsRequest) (*ListUploadedLogsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListUploadedLogs not implemented")
}
func (UnimplementedDeviceLogsServiceServer) ListRealtimeDomains(context.Context, *ListRealtimeDomainsRequest) (*ListRealtimeDomainsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRealtimeDomains not implemented")
}
func (UnimplementedDeviceLogsServiceServer) StartUpload(context.Context, *StartUploadRequest) (*StartUploadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method StartUpload not implemented")
}
func (UnimplementedDeviceLogsServiceServer) CancelUpload(context.Context, *CancelUploadRequest) (*CancelUploadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelUpload not implemented")
}
func (UnimplementedDeviceLogsServiceServer) DeleteHistory(context.Context, *DeleteHistoryRequest) (*DeleteHistoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteHistory not implemented")
}
func (UnimplementedDeviceLogsServiceServer) GetDownloadURL(context.Context, *GetDownloadURLRequest) (*GetDownloadURLResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDownloadURL not implemented")
}

func RegisterDeviceLogsServiceServer(s grpc.ServiceRegistrar, srv DeviceLogsServiceServer) {
	s.RegisterService(&DeviceLogsService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method into a grpc.MethodDesc handler.
func unaryHandler[Req any, Resp any](fullMethod string, call func(DeviceLogsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DeviceLogsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DeviceLogsServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DeviceLogsService_ServiceDesc is the grpc.ServiceDesc for DeviceLogsService.
var DeviceLogsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DeviceLogsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListUploadedLogs",
			Handler:    unaryHandler(DeviceLogsService_ListUploadedLogs_FullMethodName, DeviceLogsServiceServer.ListUploadedLogs),
		},
		{
			MethodName: "ListRealtimeDomains",
			Handler:    unaryHandler(DeviceLogsService_ListRealtimeDomains_FullMethodName, DeviceLogsServiceServer.ListRealtimeDomains),
		},
		{
			MethodName: "StartUpload",
			Handler:    unaryHandler(DeviceLogsService_StartUpload_FullMethodName, DeviceLogsServiceServer.StartUpload),
		},
		{
			MethodName: "CancelUpload",
			Handler:    unaryHandler(DeviceLogsService_CancelUpload_FullMethodName, DeviceLogsServiceServer.CancelUpload),
		},
		{
			MethodName: "DeleteHistory",
			Handler:    unaryHandler(DeviceLogsService_DeleteHistory_FullMethodName, DeviceLogsServiceServer.DeleteHistory),
		},
		{
			MethodName: "GetDownloadURL",
			Handler:    unaryHandler(DeviceLogsService_GetDownloadURL_FullMethodName, DeviceLogsServiceServer.GetDownloadURL),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "devlogs.proto",
}

// DeviceLogsServiceClient is the client API for DeviceLogsService.
type DeviceLogsServiceClient interface {
	ListUploadedLogs(ctx context.Context, in *ListUploadedLogsRequest, opts ...grpc.CallOption) (*ListUploadedLogsResponse, error)
	ListRealtimeDomains(ctx context.Context, in *ListRealtimeDomainsRequest, opts ...grpc.CallOption) (*ListRealtimeDomainsResponse, error)
	StartUpload(ctx context.Context, in *StartUploadRequest, opts ...grpc.CallOption) (*StartUploadResponse, error)
	CancelUpload(ctx context.Context, in *CancelUploadRequest, opts ...grpc.CallOption) (*CancelUploadResponse, error)
	DeleteHistory(ctx context.Context, in *DeleteHistoryRequest, opts ...grpc.CallOption) (*DeleteHistoryResponse, error)
	GetDownloadURL(ctx context.Context, in *GetDownloadURLRequest, opts ...grpc.CallOption) (*GetDownloadURLResponse, error)
}

type deviceLogsServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDeviceLogsServiceClient(cc grpc.ClientConnInterface) DeviceLogsServiceClient {
	return &deviceLogsServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *deviceLogsServiceClient) ListUploadedLogs(ctx context.Context, in *ListUploadedLogsRequest, opts ...grpc.CallOption) (*ListUploadedLogsResponse, error) {
	return invoke[ListUploadedLogsResponse](ctx, c.cc, DeviceLogsService_ListUploadedLogs_FullMethodName, in, opts)
}

func (c *deviceLogsServiceClient) ListRealtimeDomains(ctx context.Context, in *ListRealtimeDomainsRequest, opts ...grpc.CallOption) (*ListRealtimeDomainsResponse, error) {
	return invoke[ListRealtimeDomainsResponse](ctx, c.cc, DeviceLogsService_ListRealtimeDomains_FullMethodName, in, opts)
}

func (c *deviceLogsServiceClient) StartUpload(ctx context.Context, in *StartUploadRequest, opts ...grpc.CallOption) (*StartUploadResponse, error) {
	return invoke[StartUploadResponse](ctx, c.cc, DeviceLogsService_StartUpload_FullMethodName, in, opts)
}

func (c *deviceLogsServiceClient) CancelUpload(ctx context.Context, in *CancelUploadRequest, opts ...grpc.CallOption) (*CancelUploadResponse, error) {
	return invoke[CancelUploadResponse](ctx, c.cc, DeviceLogsService_CancelUpload_FullMethodName, in, opts)
}

func (c *deviceLogsServiceClient) DeleteHistory(ctx context.Context, in *DeleteHistoryRequest, opts ...grpc.CallOption) (*DeleteHistoryResponse, error) {
	return invoke[DeleteHistoryResponse](ctx, c.cc, DeviceLogsService_DeleteHistory_FullMethodName, in, opts)
}

func (c *deviceLogsServiceClient) GetDownloadURL(ctx context.Context, in *GetDownloadURLRequest, opts ...grpc.CallOption) (*GetDownloadURLResponse, error) {
	return invoke[GetDownloadURLResponse](ctx, c.cc, DeviceLogsService_GetDownloadURL_FullMethodName, in, opts)
}
