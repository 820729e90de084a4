package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics of the simulator
// ⭐ SSOT: 메트릭 정의는 여기서만
//
// A nil *Registry is valid and records nothing (METRICS_ENABLED=false).
type Registry struct {
	reg *prometheus.Registry

	StageDuration *prometheus.HistogramVec
	Runs          *prometheus.CounterVec
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

// New creates a registry with every simulator metric registered
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "investsim_stage_duration_seconds",
				Help:    "Duration of each simulation stage in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"stage", "result"},
		),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investsim_runs_total",
				Help: "Total number of simulation runs by result",
			},
			[]string{"result"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investsim_cache_hits_total",
				Help: "Quote cache hits by cache type",
			},
			[]string{"cache_type"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investsim_cache_misses_total",
				Help: "Quote cache misses by cache type",
			},
			[]string{"cache_type"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investsim_http_requests_total",
				Help: "API requests by route and status code",
			},
			[]string{"route", "status"},
		),
	}

	r.reg.MustRegister(
		r.StageDuration,
		r.Runs,
		r.CacheHits,
		r.CacheMisses,
		r.HTTPRequests,
		prometheus.NewGoCollector(),
	)

	return r
}

// ObserveStage records how long a stage took
func (r *Registry) ObserveStage(stage string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage, result(err)).Observe(d.Seconds())
}

// RecordRun counts a finished simulation run
func (r *Registry) RecordRun(err error) {
	if r == nil {
		return
	}
	r.Runs.WithLabelValues(result(err)).Inc()
}

// RecordCache counts a cache lookup
func (r *Registry) RecordCache(cacheType string, hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	r.CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordHTTP counts a served API request
func (r *Registry) RecordHTTP(route, status string) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, status).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry (tests, custom exporters)
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
