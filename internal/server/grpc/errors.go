package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/sundaram/internal/common"
)

func codeFromError(err error) codes.Code {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return codes.Unauthenticated
	case errors.Is(err, common.ErrorConflict):
		return codes.AlreadyExists
	case errors.Is(err, common.ErrorNotFound):
		return codes.NotFound
	case errors.Is(err, common.ErrorBadRequest):
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

func (s *Server) toStatus(ctx context.Context, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := codeFromError(err)
	if code == codes.Internal {
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(code, common.ErrorInternal.Error())
	}
	return status.Error(code, common.Message(err))
}
