package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on Prometheus collectors.
type Metrics struct {
	generations *prometheus.HistogramVec
	layouts     prometheus.Histogram
	saves       *prometheus.CounterVec
	statuses    *prometheus.CounterVec
	cache       *prometheus.CounterVec
	requests    *prometheus.HistogramVec
	httpErrors  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "anymaps",
			Name:      "generation_duration_seconds",
			Help:      "Duration of generation service calls.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind", "result"}),
		layouts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "anymaps",
			Name:      "layout_duration_seconds",
			Help:      "Duration of layout computations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anymaps",
			Name:      "saves_total",
			Help:      "Map save attempts by result.",
		}, []string{"result"}),
		statuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anymaps",
			Name:      "status_transitions_total",
			Help:      "Session status transitions by target status.",
		}, []string{"status"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anymaps",
			Name:      "cache_events_total",
			Help:      "Response cache events.",
		}, []string{"key_type", "event"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "anymaps",
			Name:      "http_client_request_duration_seconds",
			Help:      "Outgoing HTTP request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "code"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anymaps",
			Name:      "http_client_errors_total",
			Help:      "Outgoing HTTP requests that failed without a response.",
		}, []string{"method", "path"}),
	}
	reg.MustRegister(m.generations, m.layouts, m.saves, m.statuses, m.cache, m.requests, m.httpErrors)
	return m
}

// Install registers m as the pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	SetPipelineHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnGenerateComplete(_ context.Context, kind string, _ int, d time.Duration, err error) {
	m.generations.WithLabelValues(kind, result(err)).Observe(d.Seconds())
}

func (m *Metrics) OnLayoutComplete(_ context.Context, _ int, d time.Duration, _ error) {
	m.layouts.Observe(d.Seconds())
}

func (m *Metrics) OnSaveComplete(_ context.Context, _ time.Duration, err error) {
	m.saves.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) OnStatus(_ context.Context, status string) {
	m.statuses.WithLabelValues(status).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cache.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cache.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cache.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, _, path string, code int, d time.Duration) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(code)).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, _, path string, _ error) {
	m.httpErrors.WithLabelValues(method, path).Inc()
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)
