// Package metrics provides Prometheus metrics collection for treelite ownership events.
package metrics

import (
	"github.com/crflynn/treelite/core/deepcopy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "treelite"

// Collector holds all Prometheus metrics for handle ownership.
// It implements deepcopy.Observer.
type Collector struct {
	// Allocation metrics
	AllocationsTotal *prometheus.CounterVec
	MovesTotal       *prometheus.CounterVec

	// Release metrics
	ReleasesTotal *prometheus.CounterVec

	// Live objects per kind
	LiveObjects *prometheus.GaugeVec
}

// New creates a new metrics collector registered with the default registerer.
func New() *Collector {
	return newCollector(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newCollector(promauto.With(reg))
}

func newCollector(factory promauto.Factory) *Collector {
	return &Collector{
		AllocationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "allocations_total",
				Help:      "Total number of handle allocations (new, adopt, copy)",
			},
			[]string{"kind", "op"},
		),
		MovesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "moves_total",
				Help:      "Total number of allocations transferred between handles",
			},
			[]string{"kind"},
		),
		ReleasesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "releases_total",
				Help:      "Total number of allocations released or taken out of a handle",
			},
			[]string{"kind", "op"},
		),
		LiveObjects: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "live_objects",
				Help:      "Number of allocations currently owned by a handle",
			},
			[]string{"kind"},
		),
	}
}

// Observe records one ownership event.
func (c *Collector) Observe(ev deepcopy.Event) {
	kind := NormalizeKind(ev.Kind)
	op := ev.Op.String()

	switch {
	case ev.Op.Allocates():
		c.AllocationsTotal.WithLabelValues(kind, op).Inc()
		c.LiveObjects.WithLabelValues(kind).Inc()
	case ev.Op == deepcopy.OpMove:
		c.MovesTotal.WithLabelValues(kind).Inc()
	case ev.Op.Frees():
		c.ReleasesTotal.WithLabelValues(kind, op).Inc()
		c.LiveObjects.WithLabelValues(kind).Dec()
	}
}

// NormalizeKind bounds the cardinality of the kind label.
// Instantiated generic type names can grow without bound, so long names are cut.
func NormalizeKind(kind string) string {
	if kind == "" {
		return "unknown"
	}
	if len(kind) > 64 {
		return kind[:64] + "..."
	}
	return kind
}

// Ensure interface compliance.
var _ deepcopy.Observer = (*Collector)(nil)
