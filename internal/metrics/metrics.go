// Package metrics holds the Prometheus collectors for HTTP traffic and
// upstream Notion calls.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/folio/internal/notion"
)

// Metrics owns a private registry so several servers can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "folio",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	m.upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "upstream_requests_total",
		Help:      "Notion API requests by operation and outcome",
	}, []string{"op", "status"})
	m.upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "folio",
		Name:      "upstream_request_duration_seconds",
		Help:      "Notion API latency by operation",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	m.registry.MustRegister(
		m.httpRequests, m.httpDuration,
		m.upstreamRequests, m.upstreamDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveUpstream records one Notion call. It matches notion.Observer.
func (m *Metrics) ObserveUpstream(op string, d time.Duration, err error) {
	m.upstreamRequests.WithLabelValues(op, UpstreamStatus(err)).Inc()
	m.upstreamDuration.WithLabelValues(op).Observe(d.Seconds())
}

// UpstreamStatus classifies an upstream error for the status label.
func UpstreamStatus(err error) string {
	var qe *notion.QueryError
	var me *notion.MappingError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, notion.ErrNotFound):
		return "not_found"
	case errors.As(err, &me):
		return "malformed"
	case errors.As(err, &qe) && qe.Status == 0:
		return "transport"
	default:
		return "error"
	}
}
