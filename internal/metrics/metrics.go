// Package metrics holds the Prometheus collectors of the frame store and the
// CLI pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DirectionIn  = "in"
	DirectionOut = "out"

	OpAppend = "append"
	OpRead   = "read"
	OpDelete = "delete"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	rowsTotal    *prometheus.CounterVec
	framesTotal  *prometheus.CounterVec
	frameBytes   prometheus.Histogram
	streamsTotal prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rowsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jelly_rows_total",
				Help: "Total number of stream rows written or read, by row kind",
			},
			[]string{"direction", "kind"},
		),
		framesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jelly_frames_total",
				Help: "Total number of frame store operations",
			},
			[]string{"op"},
		),
		frameBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jelly_frame_bytes",
				Help:    "Size of stored frames in bytes, after compression",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
		),
		streamsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "jelly_streams_created_total",
				Help: "Total number of streams created in the frame store",
			},
		),
	}
}

// RecordRow counts one row of the given kind.
func (m *Metrics) RecordRow(direction, kind string) {
	if m == nil {
		return
	}
	m.rowsTotal.WithLabelValues(direction, kind).Inc()
}

// RecordFrame counts a frame store operation. size is ignored for deletes.
func (m *Metrics) RecordFrame(op string, size int) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(op).Inc()
	if op == OpAppend {
		m.frameBytes.Observe(float64(size))
	}
}

// RecordStream counts a created stream.
func (m *Metrics) RecordStream() {
	if m == nil {
		return
	}
	m.streamsTotal.Inc()
}
