package logctl

import (
	"context"
	"io"

	"github.com/dmitrijs2005/devlogs/internal/common"
	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func tokenInterceptor(token string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
	}
}

func dial(server, token string) (pb.DeviceLogsServiceClient, io.Closer, error) {
	conn, err := grpc.NewClient(server,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(tokenInterceptor(token)),
	)
	if err != nil {
		return nil, nil, err
	}
	return pb.NewDeviceLogsServiceClient(conn), conn, nil
}
