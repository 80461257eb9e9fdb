// Package grpc exposes the Sundaram API over gRPC. There are no generated
// stubs: the service is described by hand and its messages are the JSON
// types of package api, carried by the "json" codec.
package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/auth"
	"github.com/dmitrijs2005/sundaram/internal/server/metrics"
	"github.com/dmitrijs2005/sundaram/internal/server/services"
)

type Server struct {
	address string
	users   *services.UserService
	sieve   *services.SieveService
	history *services.HistoryService
	auth    *auth.Authenticator
	metrics *metrics.Metrics
	logger  logging.Logger
	clock   func() time.Time
}

func NewServer(address string, l logging.Logger, us *services.UserService, ss *services.SieveService,
	hs *services.HistoryService, a *auth.Authenticator, m *metrics.Metrics) *Server {
	return &Server{
		address: address,
		users:   us,
		sieve:   ss,
		history: hs,
		auth:    a,
		metrics: m,
		logger:  l.With("module", "grpc_server"),
		clock:   time.Now,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessLogInterceptor, s.signatureInterceptor))
	RegisterSundaramServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
