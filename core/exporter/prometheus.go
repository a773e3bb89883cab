package exporter

import (
	"context"
	"io"
	"strings"

	"github.com/crflynn/treelite/core/deepcopy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// PrometheusExporter forwards events to a Prometheus collector and renders
// the gathered metrics in the text exposition format.
type PrometheusExporter struct {
	gatherer prometheus.Gatherer
	observer deepcopy.Observer
	prefix   string
	output   io.Writer
}

// PrometheusConfig configures the Prometheus exporter.
type PrometheusConfig struct {
	// Gatherer is the registry the collector is registered with.
	Gatherer prometheus.Gatherer

	// Observer receives every event (typically the metrics collector).
	Observer deepcopy.Observer

	// Prefix limits exposition to metric families with this name prefix (default: "treelite_").
	Prefix string

	// Output receives the exposition on Flush (nil disables it).
	Output io.Writer
}

// NewPrometheusExporter creates a new Prometheus exporter.
func NewPrometheusExporter(cfg PrometheusConfig) *PrometheusExporter {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "treelite_"
	}
	return &PrometheusExporter{
		gatherer: cfg.Gatherer,
		observer: cfg.Observer,
		prefix:   cfg.Prefix,
		output:   cfg.Output,
	}
}

// Name returns the exporter name.
func (e *PrometheusExporter) Name() string {
	return "prometheus"
}

// Observe forwards the event to the configured observer.
func (e *PrometheusExporter) Observe(ev deepcopy.Event) {
	if e.observer != nil {
		e.observer.Observe(ev)
	}
}

// WriteText writes the gathered metric families in text exposition format.
func (e *PrometheusExporter) WriteText(w io.Writer) error {
	families, err := e.gatherer.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), e.prefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes the exposition to the configured output.
func (e *PrometheusExporter) Flush(ctx context.Context) error {
	if e.output == nil {
		return nil
	}
	return e.WriteText(e.output)
}

// Ensure interface compliance.
var _ Exporter = (*PrometheusExporter)(nil)
