package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/dmitrijs2005/devlogs/internal/server/models"
	"google.golang.org/grpc/codes"
)

func (s *GRPCServer) ListUploadedLogs(ctx context.Context, req *pb.ListUploadedLogsRequest) (*pb.ListUploadedLogsResponse, error) {

	page, err := s.logs.ListUploaded(ctx, req.DeviceSN, models.QueryParams{
		Page:      req.Page,
		PageSize:  req.PageSize,
		BeginTime: req.BeginTime,
		EndTime:   req.EndTime,
		Status:    models.FileStatus(req.Status),
		Keyword:   req.Keyword,
		Ascending: req.Ascending,
	})
	if err != nil {
		s.logger.Error(ctx, "list uploaded logs failed", "device_sn", req.DeviceSN, "error", err)
		return nil, toStatus(err, codes.FailedPrecondition)
	}

	resp := &pb.ListUploadedLogsResponse{
		Items:    make([]*pb.UploadRequest, 0, len(page.Items)),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}
	for _, r := range page.Items {
		resp.Items = append(resp.Items, requestToPB(r))
	}
	return resp, nil
}

func (s *GRPCServer) ListRealtimeDomains(ctx context.Context, req *pb.ListRealtimeDomainsRequest) (*pb.ListRealtimeDomainsResponse, error) {

	domains, err := s.logs.ListRealtimeDomains(ctx, req.DeviceSN, req.Domains)
	if err != nil {
		s.logger.Error(ctx, "list realtime domains failed", "device_sn", req.DeviceSN, "error", err)
		return nil, toStatus(err, codes.FailedPrecondition)
	}

	return &pb.ListRealtimeDomainsResponse{Domains: domainsToPB(domains)}, nil
}

func (s *GRPCServer) StartUpload(ctx context.Context, req *pb.StartUploadRequest) (*pb.StartUploadResponse, error) {

	username := usernameFromContext(ctx)
	s.logger.Info(ctx, "Start upload request", "device_sn", req.DeviceSN, "username", username, "files", len(req.Files))

	created, err := s.logs.StartUpload(ctx, username, req.DeviceSN, selectionFromPB(req))
	if err != nil {
		s.logger.Error(ctx, "start upload failed", "device_sn", req.DeviceSN, "error", err)
		return nil, toStatus(err, codes.AlreadyExists)
	}

	return &pb.StartUploadResponse{Request: requestToPB(created)}, nil
}

func (s *GRPCServer) CancelUpload(ctx context.Context, req *pb.CancelUploadRequest) (*pb.CancelUploadResponse, error) {

	ack, err := s.logs.ApplyUpdate(ctx, req.DeviceSN, updateFromPB(req))
	if err != nil {
		s.logger.Error(ctx, "cancel upload failed", "device_sn", req.DeviceSN, "request_id", req.RequestID, "error", err)
		return nil, toStatus(err, codes.FailedPrecondition)
	}

	return &pb.CancelUploadResponse{
		RequestID: ack.RequestID,
		Cancelled: ack.Cancelled,
		Skipped:   ack.Skipped,
	}, nil
}

func (s *GRPCServer) DeleteHistory(ctx context.Context, req *pb.DeleteHistoryRequest) (*pb.DeleteHistoryResponse, error) {

	if err := s.logs.DeleteHistory(ctx, req.DeviceSN, req.RequestID); err != nil {
		s.logger.Error(ctx, "delete history failed", "device_sn", req.DeviceSN, "request_id", req.RequestID, "error", err)
		return nil, toStatus(err, codes.FailedPrecondition)
	}

	s.logger.Info(ctx, "History deleted", "device_sn", req.DeviceSN, "request_id", req.RequestID)
	return &pb.DeleteHistoryResponse{}, nil
}

func (s *GRPCServer) GetDownloadURL(ctx context.Context, req *pb.GetDownloadURLRequest) (*pb.GetDownloadURLResponse, error) {

	url, err := s.logs.ResolveDownloadURL(ctx, req.RequestID, req.FileID)
	if err != nil {
		s.logger.Error(ctx, "resolve download url failed", "request_id", req.RequestID, "file_id", req.FileID, "error", err)
		return nil, toStatus(err, codes.FailedPrecondition)
	}

	return &pb.GetDownloadURLResponse{URL: url}, nil
}
