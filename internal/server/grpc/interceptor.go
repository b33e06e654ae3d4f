package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/devlogs/internal/common"
	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/dmitrijs2005/devlogs/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const usernameKey ctxKey = "username"

// usernameFromContext returns the caller identity set by the interceptor.
func usernameFromContext(ctx context.Context) string {
	u, _ := ctx.Value(usernameKey).(string)
	return u
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if strings.HasPrefix(info.FullMethod, "/"+pb.ServiceName+"/") {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		username, err := auth.GetUsernameFromToken(accessToken, s.jwtSecret)
		if err != nil {
			s.logger.Warn(ctx, "rejected token", "method", info.FullMethod, "error", err)
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, usernameKey, username)

	}

	return handler(ctx, req)
}
