package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/auth"
	"github.com/dmitrijs2005/sundaram/internal/server/metrics"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
	"github.com/dmitrijs2005/sundaram/internal/signature"
)

type ctxKey string

const userKey ctxKey = "user"

func userFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// readBody reads at most limit bytes of the request body and puts the bytes
// back so handlers can decode them again.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, common.Detail(common.ErrorBadRequest, "request body too large")
		}
		return nil, common.Detail(common.ErrorBadRequest, "cannot read request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return raw, nil
}

// limitBody caps the body of unauthenticated routes.
func limitBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// signatureAuth resolves the caller from the Authorization signature over
// the canonical request body and stores the user in the request context.
func signatureAuth(a *auth.Authenticator, limit int64, clock func() time.Time, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sig := r.Header.Get(common.SignatureHeaderName)
			if sig == "" {
				writeError(ctx, w, logger, common.ErrMissingSignature)
				return
			}

			raw, err := readBody(w, r, limit)
			if err != nil {
				writeError(ctx, w, logger, err)
				return
			}
			body, err := signature.CanonicalBody(raw)
			if err != nil {
				writeError(ctx, w, logger, common.Detail(common.ErrorBadRequest, "invalid JSON body"))
				return
			}

			u, err := a.Resolve(ctx, auth.Request{
				Signature:    sig,
				Body:         body,
				SessionToken: r.Header.Get(common.SessionTokenHeaderName),
				Now:          clock(),
			})
			if err != nil {
				writeError(ctx, w, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, userKey, u)))
		})
	}
}

// accessLog logs one line per request and records request metrics under the
// matched route pattern.
func accessLog(logger logging.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			duration := time.Since(start)

			m.ObserveHTTP(r.Method, route, strconv.Itoa(status), duration.Seconds())
			logger.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", status,
				"duration", duration,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
