// Package metrics defines the Prometheus collectors of the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sundaram"

// Metrics groups all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	GRPCRequests    *prometheus.CounterVec
	AuthResults     *prometheus.CounterVec
	AuthCandidates  prometheus.Histogram
	PrimesGenerated prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GRPCRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_requests_total",
				Help:      "Total number of gRPC calls by method and code",
			},
			[]string{"method", "code"},
		),
		AuthResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_results_total",
				Help:      "Signature resolutions by path (hint, scan) and result",
			},
			[]string{"path", "result"},
		),
		AuthCandidates: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "auth_candidates",
				Help:      "Signatures computed per resolution",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		PrimesGenerated: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "primes_generated_total",
				Help:      "Total number of primes returned by generate",
			},
		),
	}
}

func (m *Metrics) ObserveAuth(path, result string, candidates int) {
	if m == nil {
		return
	}
	m.AuthResults.WithLabelValues(path, result).Inc()
	m.AuthCandidates.Observe(float64(candidates))
}

func (m *Metrics) AddPrimes(n int) {
	if m == nil {
		return
	}
	m.PrimesGenerated.Add(float64(n))
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) ObserveGRPC(method, code string) {
	if m == nil {
		return
	}
	m.GRPCRequests.WithLabelValues(method, code).Inc()
}
