package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/devlogs/internal/logging"
	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/dmitrijs2005/devlogs/internal/server/models"
	"google.golang.org/grpc"
)

// LogService is the part of the log orchestrator exposed over gRPC.
type LogService interface {
	ListUploaded(ctx context.Context, deviceSN string, params models.QueryParams) (*models.Page[*models.UploadRequest], error)
	ListRealtimeDomains(ctx context.Context, deviceSN string, domains []string) ([]models.DomainDescriptor, error)
	StartUpload(ctx context.Context, requestedBy, deviceSN string, sel models.FileSelection) (*models.UploadRequest, error)
	ApplyUpdate(ctx context.Context, deviceSN string, upd models.UpdateRequest) (*models.UpdateAck, error)
	DeleteHistory(ctx context.Context, deviceSN, requestID string) error
	ResolveDownloadURL(ctx context.Context, requestID, fileID string) (string, error)
}

type GRPCServer struct {
	pb.UnimplementedDeviceLogsServiceServer
	address   string
	logs      LogService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, ls LogService, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		logs:      ls,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	pb.RegisterDeviceLogsServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
