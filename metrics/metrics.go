// Package metrics provides Prometheus metrics for spec resolution.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
)

// Collector holds the resolution metrics. It implements dsl.Observer, so it
// can be attached with dsl.WithObserver or tensorstore.WithObserver.
type Collector struct {
	ResolutionsTotal *prometheus.CounterVec
	ResolveDuration  *prometheus.HistogramVec
	IssuesTotal      *prometheus.CounterVec
}

var _ g.Observer = (*Collector)(nil)

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tsspec",
				Name:      "resolutions_total",
				Help:      "Total number of top-level spec resolutions",
			},
			[]string{"category", "variant", "result"},
		),
		ResolveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tsspec",
				Name:      "resolve_duration_seconds",
				Help:      "Spec resolution duration in seconds",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"category"},
		),
		IssuesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tsspec",
				Name:      "issues_total",
				Help:      "Total number of validation issues by code",
			},
			[]string{"category", "code"},
		),
	}
}

// ObserveResolve records one resolution.
func (c *Collector) ObserveResolve(category, variant string, d time.Duration, iss tsspec.Issues) {
	result := "ok"
	if len(iss) > 0 {
		result = "invalid"
	}
	if variant == "" {
		variant = g.UnknownVariant
	}
	c.ResolutionsTotal.WithLabelValues(category, variant, result).Inc()
	c.ResolveDuration.WithLabelValues(category).Observe(d.Seconds())
	for _, it := range iss {
		c.IssuesTotal.WithLabelValues(category, it.Code).Inc()
	}
}

// WriteTextfile writes the metrics gathered from reg in the text exposition
// format, for the node exporter textfile collector.
func WriteTextfile(path string, reg prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, reg)
}
