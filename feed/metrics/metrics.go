// Package metrics records fetch outcomes of a collector run and writes them
// in the Prometheus text format for a node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fetch"
	"github.com/morikuni/failure/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrorCode defines error types for metrics output
type ErrorCode string

// ErrWriteMetrics represents a failure to write the metrics file
const ErrWriteMetrics ErrorCode = "WriteMetrics"

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Recorder holds the collectors of one run on a private registry
type Recorder struct {
	registry *prometheus.Registry

	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	sources  *prometheus.CounterVec
	lastRun  prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fplfeed",
				Name:      "fetch_total",
				Help:      "Number of fetches by feed and outcome",
			},
			[]string{"feed", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fplfeed",
				Name:      "fetch_duration_seconds",
				Help:      "Fetch duration by feed",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"feed"},
		),
		sources: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fplfeed",
				Name:      "optional_source_total",
				Help:      "Source chosen for optional feeds",
			},
			[]string{"feed", "source"},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "fplfeed",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last snapshot was written",
			},
		),
	}
}

// ObserveFetch implements fetch.Observer
func (r *Recorder) ObserveFetch(name string, res fetch.Result, elapsed time.Duration) {
	r.fetches.WithLabelValues(name, fetch.Classify(res.Err)).Inc()
	r.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// RecordSource counts the source chosen for an optional feed
func (r *Recorder) RecordSource(feed, source string) {
	r.sources.WithLabelValues(feed, source).Inc()
}

// MarkRun sets the last run gauge to t
func (r *Recorder) MarkRun(t time.Time) {
	r.lastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes every metric to path, replacing it atomically
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return failure.New(ErrWriteMetrics,
			failure.Message("failed to write metrics: "+err.Error()),
			failure.Context{"path": path},
		)
	}
	return nil
}

var _ fetch.Observer = (*Recorder)(nil)
