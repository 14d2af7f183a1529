package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "md2docx"

// Outcome labels for conversions.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Collectors holds the Prometheus instruments for conversions and jobs.
type Collectors struct {
	registry *prometheus.Registry

	Conversions   *prometheus.CounterVec
	Duration      prometheus.Histogram
	Degradations  *prometheus.CounterVec
	PendingImages prometheus.Counter
	OutputBytes   prometheus.Histogram
	Jobs          *prometheus.CounterVec
}

// NewCollectors registers every instrument on a fresh registry, together
// with the Go runtime and process collectors.
func NewCollectors() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	bootTime := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "boot_time_seconds",
		Help:      "Unix time the process started.",
	})
	bootTime.Set(float64(time.Now().Unix()))

	return &Collectors{
		registry: reg,
		Conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Markdown to DOCX conversions by outcome.",
		}, []string{"outcome"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Wall time of successful conversions.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		Degradations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degradations_total",
			Help:      "Blocks rendered through a fallback, by element kind.",
		}, []string{"kind"}),
		PendingImages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pending_images_total",
			Help:      "Image placeholders emitted for out-of-band resolution.",
		}),
		OutputBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_bytes",
			Help:      "Size of produced DOCX documents.",
			Buckets:   prometheus.ExponentialBuckets(4096, 4, 8),
		}),
		Jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Async conversion jobs by final status.",
		}, []string{"status"}),
	}
}

// RegisterQueueDepth exposes the async queue depth as a gauge read at
// scrape time.
func (c *Collectors) RegisterQueueDepth(depth func() int) {
	promauto.With(c.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Conversion jobs waiting for a worker.",
	}, func() float64 { return float64(depth()) })
}

// Registry returns the registry the collectors live on.
func (c *Collectors) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
