package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// MetricsRegistry holds all Prometheus metrics for the service
type MetricsRegistry struct {
	registry *prometheus.Registry

	// HTTP metrics
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter

	// Data set metrics
	DatasetRecords prometheus.Gauge
	Refreshes      *prometheus.CounterVec
	BreakerState   *prometheus.GaugeVec

	// Live update metrics
	StreamClients prometheus.Gauge
}

// NewMetricsRegistry creates a registry with every service metric plus the
// Go runtime and process collectors
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),

		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selicinsights_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "selicinsights_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"route"},
		),

		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "selicinsights_http_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),

		DatasetRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "selicinsights_dataset_records",
				Help: "Number of observations in the served data set",
			},
		),

		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selicinsights_dataset_refresh_total",
				Help: "Total number of data set refreshes by result",
			},
			[]string{"result"},
		),

		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "selicinsights_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"breaker"},
		),

		StreamClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "selicinsights_stream_clients",
				Help: "Number of connected WebSocket clients",
			},
		),
	}

	m.registry.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.RateLimited,
		m.DatasetRecords,
		m.Refreshes,
		m.BreakerState,
		m.StreamClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry for tests and custom handlers
func (m *MetricsRegistry) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *MetricsRegistry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TrackLimiterClients exports the number of clients held by the rate limiter
func (m *MetricsRegistry) TrackLimiterClients(count func() int) {
	gauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "selicinsights_http_rate_limit_clients",
			Help: "Number of clients tracked by the rate limiter",
		},
		func() float64 { return float64(count()) },
	)
	if err := m.registry.Register(gauge); err != nil {
		log.Warn().Err(err).Msg("Rate limiter gauge not registered")
	}
}

// ObserveRequest records one completed request
func (m *MetricsRegistry) ObserveRequest(route string, code int, d time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveRefresh is a source.Observer
func (m *MetricsRegistry) ObserveRefresh(result string, records int) {
	m.Refreshes.WithLabelValues(result).Inc()
	if records > 0 {
		m.DatasetRecords.Set(float64(records))
	}
}

// ObserveBreaker records a state transition reported by the breaker
func (m *MetricsRegistry) ObserveBreaker(name, _, to string) {
	var v float64
	switch to {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	m.BreakerState.WithLabelValues(name).Set(v)
}

// SetStreamClients is a stream.Hub count observer
func (m *MetricsRegistry) SetStreamClients(n int) {
	m.StreamClients.Set(float64(n))
}
