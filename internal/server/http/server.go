// Package http exposes the Sundaram API as JSON over HTTP.
//
// Routes under /sundaram and /users (except register and authenticate)
// require an Authorization header carrying the hex HMAC of the canonical
// request body, see package signature.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sundaram/internal/logging"
)

type Server struct {
	address         string
	handler         http.Handler
	shutdownTimeout time.Duration
	logger          logging.Logger
}

func NewServer(address string, handler http.Handler, shutdownTimeout time.Duration, logger logging.Logger) *Server {
	return &Server{address: address, handler: handler, shutdownTimeout: shutdownTimeout, logger: logger}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(context.Background(), "HTTP server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(context.Background(), "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "HTTP server started", "address", lis.Addr().String())

	err := srv.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
