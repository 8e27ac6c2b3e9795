package grpc

import (
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ReauthenticateMessage is the only detail a client gets about a bad token.
const ReauthenticateMessage = "re-authenticate"

// toStatus maps service errors onto gRPC status codes. Internal failures are
// not described to the caller.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrDuplicateIdentity):
		return status.Error(codes.AlreadyExists, common.ErrDuplicateIdentity.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, common.ErrInvalidCredentials.Error())
	case common.IsTokenError(err):
		return status.Error(codes.Unauthenticated, ReauthenticateMessage)
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, common.ErrForbidden.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
