package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for the HTTP API.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	wsClients       prometheus.Gauge
	broadcastDrops  prometheus.Counter
	rateLimited     prometheus.Counter
	importsTotal    prometheus.Counter
	importFailures  prometheus.Counter
	messagesParsed  prometheus.Counter
}

func newMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memories",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests received",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memories",
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "memories",
			Name:      "ws_clients",
			Help:      "Current connected WebSocket clients",
		}),
		broadcastDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memories",
			Name:      "broadcast_drops_total",
			Help:      "Number of stream events dropped due to slow clients",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memories",
			Name:      "http_rate_limited_total",
			Help:      "Number of HTTP requests rejected due to rate limiting",
		}),
		importsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memories",
			Name:      "imports_total",
			Help:      "Number of transcripts imported",
		}),
		importFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memories",
			Name:      "import_failures_total",
			Help:      "Number of transcript imports that failed",
		}),
		messagesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memories",
			Name:      "messages_parsed_total",
			Help:      "Number of chat messages produced by imports",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.wsClients,
		m.broadcastDrops,
		m.rateLimited,
		m.importsTotal,
		m.importFailures,
		m.messagesParsed,
	)

	return m
}

// Handler returns an HTTP handler exposing the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records timing and status information.
func (m *Metrics) ObserveRequest(route, method string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(dur.Seconds())
}

// IncWSClients adjusts the WebSocket client gauge by delta.
func (m *Metrics) IncWSClients(delta float64) {
	if m == nil {
		return
	}
	m.wsClients.Add(delta)
}

// IncBroadcastDrops increments the drop counter.
func (m *Metrics) IncBroadcastDrops() {
	if m == nil {
		return
	}
	m.broadcastDrops.Inc()
}

// IncRateLimited increments the rate limit counter.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// ObserveImport records one import outcome and its parsed message count.
func (m *Metrics) ObserveImport(messages int, failed bool) {
	if m == nil {
		return
	}
	if failed {
		m.importFailures.Inc()
		return
	}
	m.importsTotal.Inc()
	m.messagesParsed.Add(float64(messages))
}
