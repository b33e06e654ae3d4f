package grpc

import (
	"errors"

	"github.com/dmitrijs2005/devlogs/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a service error to a gRPC status. conflict is the code used
// for common.ErrConflict, which means different things per call.
func toStatus(err error, conflict codes.Code) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrConflict):
		return status.Error(conflict, err.Error())
	case errors.Is(err, common.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrDeviceUnreachable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, common.ErrTimeout):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, common.ErrDeviceRejected):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, common.ErrResolutionFailed):
		return status.Error(codes.Internal, err.Error())
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "unauthorized")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
