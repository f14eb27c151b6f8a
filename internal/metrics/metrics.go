package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "klines"

// Request outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

// Symbol outcomes.
const (
	SymbolCompleted = "completed"
	SymbolSkipped   = "skipped"
	SymbolFailed    = "failed"
)

// Metrics holds the downloader collectors on a private registry so that a run
// can be exported as a node_exporter textfile.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	candles         prometheus.Counter
	symbols         *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests sent to the exchange REST API.",
		}, []string{"endpoint", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of exchange REST API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		candles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candles_fetched_total",
			Help:      "Candles received from the exchange, including re-fetched page boundaries.",
		}),
		symbols: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "symbols_total",
			Help:      "Symbols processed, by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(m.requests, m.requestDuration, m.candles, m.symbols)

	return m
}

// ObserveRequest records one API call.
func (m *Metrics) ObserveRequest(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// AddCandles counts candles received in a page.
func (m *Metrics) AddCandles(n int) {
	if m == nil {
		return
	}

	m.candles.Add(float64(n))
}

// ObserveSymbol records the final outcome of a symbol.
func (m *Metrics) ObserveSymbol(outcome string) {
	if m == nil {
		return
	}

	m.symbols.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
