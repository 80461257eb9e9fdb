package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/auth"
	"github.com/dmitrijs2005/sundaram/internal/server/metrics"
)

type RouterOptions struct {
	BodyLimit   int64
	CORSOrigins []string
	MetricsPath string
	// Gatherer serves MetricsPath. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	Clock    func() time.Time
}

// NewRouter mounts the public routes, the signed routes and the operational
// endpoints.
func NewRouter(h *Handlers, a *auth.Authenticator, logger logging.Logger, opts RouterOptions) http.Handler {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 1 << 20
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger, opts.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", common.SignatureHeaderName, common.SessionTokenHeaderName},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Healthz)
	if opts.Gatherer != nil && opts.MetricsPath != "" {
		r.Method(http.MethodGet, opts.MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(limitBody(opts.BodyLimit))
		r.Post("/users/register", h.Register)
		r.Post("/users/authenticate", h.Authenticate)
	})

	r.Group(func(r chi.Router) {
		r.Use(signatureAuth(a, opts.BodyLimit, opts.Clock, logger))

		r.Route("/sundaram", func(r chi.Router) {
			r.Post("/generate", h.Generate)
			r.Get("/current", h.GetCurrent)
			r.Delete("/current", h.DeleteCurrent)
			r.Post("/save_params", h.SaveParams)
			r.Get("/saved_params", h.ListSavedParams)
			r.Delete("/saved_params/{name}", h.DeleteSavedParams)
		})

		r.Get("/users/history", h.GetHistory)
		r.Delete("/users/history", h.DeleteHistory)
		r.Patch("/users/password", h.ChangePassword)
	})

	return r
}
