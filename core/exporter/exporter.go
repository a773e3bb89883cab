// Package exporter publishes handle ownership events to pluggable sinks.
// Implementations include zerolog and Prometheus text exposition.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/crflynn/treelite/core/deepcopy"
)

// ErrInvalidExporter is returned when an exporter cannot be registered.
var ErrInvalidExporter = errors.New("invalid exporter")

// Exporter is the base interface for all event exporters.
type Exporter interface {
	deepcopy.Observer

	// Name returns the exporter identifier (e.g., "log", "prometheus").
	Name() string

	// Flush writes out whatever the exporter has accumulated.
	Flush(ctx context.Context) error
}

// Registry manages multiple exporters.
type Registry struct {
	mu        sync.RWMutex
	exporters map[string]Exporter
}

// NewRegistry creates a new exporter registry.
func NewRegistry() *Registry {
	return &Registry{
		exporters: make(map[string]Exporter),
	}
}

// Register adds an exporter to the registry, replacing any exporter with the same name.
func (r *Registry) Register(exp Exporter) error {
	if exp == nil {
		return fmt.Errorf("%w: nil", ErrInvalidExporter)
	}
	if exp.Name() == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidExporter)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.exporters[exp.Name()] = exp
	return nil
}

// Get returns an exporter by name.
func (r *Registry) Get(name string) (Exporter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exp, ok := r.exporters[name]
	return exp, ok
}

// All returns all registered exporters ordered by name.
func (r *Registry) All() []Exporter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Exporter, 0, len(r.exporters))
	for _, exp := range r.exporters {
		result = append(result, exp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// Observer returns an observer that forwards events to every exporter
// registered at the time of the call. Nil when the registry is empty.
func (r *Registry) Observer() deepcopy.Observer {
	all := r.All()
	obs := make([]deepcopy.Observer, len(all))
	for i, exp := range all {
		obs[i] = exp
	}
	return deepcopy.Observers(obs...)
}

// Flush flushes every exporter and joins their errors.
func (r *Registry) Flush(ctx context.Context) error {
	var errs []error
	for _, exp := range r.All() {
		if err := exp.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", exp.Name(), err))
		}
	}
	return errors.Join(errs...)
}
