// Package metrics exposes pipeline counters and stage timings to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stratum"

// Outcome labels for processed records.
const (
	OutcomeInserted = "inserted"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// Collector holds the pipeline metrics on a private registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	records     *prometheus.CounterVec
	stageErrors *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	uploads     prometheus.Counter
}

// New creates a Collector with its own registry, including Go runtime
// and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records handled by each pipeline stage, by outcome.",
		}, []string{"stage", "outcome"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Stage runs that ended with an error.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of one stage run.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 9),
		}, []string{"stage"}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploads registered.",
		}),
	}
	c.registry.MustRegister(
		c.records,
		c.stageErrors,
		c.duration,
		c.uploads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveStage records the outcome of one stage run.
func (c *Collector) ObserveStage(stage string, inserted, skipped, failed int, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	c.records.WithLabelValues(stage, OutcomeInserted).Add(float64(inserted))
	c.records.WithLabelValues(stage, OutcomeSkipped).Add(float64(skipped))
	c.records.WithLabelValues(stage, OutcomeFailed).Add(float64(failed))
	c.duration.WithLabelValues(stage).Observe(elapsed.Seconds())
	if err != nil {
		c.stageErrors.WithLabelValues(stage).Inc()
	}
}

// ObserveUpload counts a registered upload.
func (c *Collector) ObserveUpload() {
	if c == nil {
		return
	}
	c.uploads.Inc()
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
