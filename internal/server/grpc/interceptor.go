package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/sundaram/internal/api"
	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/server/auth"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
	"github.com/dmitrijs2005/sundaram/internal/signature"
)

type ctxKey string

const (
	userKey      ctxKey = "user"
	requestIDKey ctxKey = "request_id"
)

var publicMethods = map[string]bool{
	api.FullMethod(api.MethodRegister):     true,
	api.FullMethod(api.MethodAuthenticate): true,
	api.FullMethod(api.MethodPing):         true,
}

func userFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// signatureInterceptor authenticates every method except register,
// authenticate and ping. The signed body is the canonical JSON of the
// request message.
func (s *Server) signatureInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	md, _ := metadata.FromIncomingContext(ctx)
	sig := firstValue(md, common.SignatureMetadataKey)
	if sig == "" {
		return nil, s.toStatus(ctx, common.ErrMissingSignature)
	}

	body, err := signature.CanonicalValue(req)
	if err != nil {
		return nil, s.toStatus(ctx, common.Detail(common.ErrorBadRequest, "invalid request body"))
	}

	u, err := s.auth.Resolve(ctx, auth.Request{
		Signature:    sig,
		Body:         body,
		SessionToken: firstValue(md, common.SessionTokenMetadataKey),
		Now:          s.clock(),
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return handler(context.WithValue(ctx, userKey, u), req)
}

// accessLogInterceptor tags the call with a request id, logs its outcome and
// counts it by status code.
func (s *Server) accessLogInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	ctx = context.WithValue(ctx, requestIDKey, uuid.NewString())

	resp, err := handler(ctx, req)

	code := status.Code(err)
	s.metrics.ObserveGRPC(info.FullMethod, code.String())
	s.logger.Info(ctx, "rpc",
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(start),
		"request_id", ctx.Value(requestIDKey),
	)
	return resp, err
}
