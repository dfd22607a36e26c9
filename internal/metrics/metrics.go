// Package metrics exposes optional Prometheus instrumentation for a
// Partfile. Nothing in the core depends on these counters being read; a
// Collector is safe to leave nil.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector groups the counters/gauges for one registry. Partfile callers
// that don't care about metrics can leave their Options.Metrics nil; every
// method on a nil *Collector is a no-op.
type Collector struct {
	chunksWritten  prometheus.Counter
	bytesRead      prometheus.Counter
	warnings       prometheus.Counter
	filesCreated   prometheus.Counter
	chunksTotal    prometheus.Gauge
	chunksWrittenN prometheus.Gauge
}

// New registers a fresh set of partfile metrics against reg. Pass
// prometheus.DefaultRegisterer to publish on the default /metrics handler.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		chunksWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "partfile",
			Name:      "chunks_written_total",
			Help:      "Number of chunk records successfully appended.",
		}),
		bytesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "partfile",
			Name:      "bytes_read_total",
			Help:      "Number of bytes served by ReadAt/ReadChunk.",
		}),
		warnings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "partfile",
			Name:      "warnings_total",
			Help:      "Number of Warning events emitted.",
		}),
		filesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "partfile",
			Name:      "files_created_total",
			Help:      "Number of times a completed file was materialized.",
		}),
		chunksTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "partfile",
			Name:      "chunks_total",
			Help:      "Resolved total chunk count of the most recently opened partfile.",
		}),
		chunksWrittenN: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "partfile",
			Name:      "chunks_written",
			Help:      "Number of chunks written so far for the most recently opened partfile.",
		}),
	}
}

func (c *Collector) AddChunkWritten() {
	if c == nil {
		return
	}
	c.chunksWritten.Inc()
}

func (c *Collector) AddBytesRead(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.bytesRead.Add(float64(n))
}

func (c *Collector) AddWarning() {
	if c == nil {
		return
	}
	c.warnings.Inc()
}

func (c *Collector) AddFileCreated() {
	if c == nil {
		return
	}
	c.filesCreated.Inc()
}

func (c *Collector) SetChunksTotal(n int64) {
	if c == nil {
		return
	}
	c.chunksTotal.Set(float64(n))
}

func (c *Collector) SetChunksWritten(n int64) {
	if c == nil {
		return
	}
	c.chunksWrittenN.Set(float64(n))
}
