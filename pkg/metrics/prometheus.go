package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	barsIngested *prometheus.CounterVec
	barsRejected *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastClose    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
	queries      *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		barsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartsignals_bars_ingested_total",
				Help: "Total number of bars accepted into the series store",
			},
			[]string{"symbol"},
		),
		barsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartsignals_bars_rejected_total",
				Help: "Total number of bars rejected by validation",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartsignals_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chartsignals_last_close",
				Help: "Last recorded close price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chartsignals_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		queries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartsignals_signal_queries_total",
				Help: "Signal queries served, by timeframe and readiness",
			},
			[]string{"tf", "ready"},
		),
	}
}

// RecordBarIngested records an accepted bar.
func (r *Recorder) RecordBarIngested(symbol string) {
	r.barsIngested.WithLabelValues(symbol).Inc()
}

// RecordBarRejected records a bar dropped by validation.
func (r *Recorder) RecordBarRejected(symbol string) {
	r.barsRejected.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastClose records the last close price for a symbol.
func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordQuery counts one served signal query.
func (r *Recorder) RecordQuery(tf string, ready bool) {
	readyLabel := "false"
	if ready {
		readyLabel = "true"
	}
	r.queries.WithLabelValues(tf, readyLabel).Inc()
}
