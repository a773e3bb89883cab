// Package app contains the services behind the treelite commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/crflynn/treelite/adapters/memory"
	"github.com/crflynn/treelite/core/capability"
	"github.com/crflynn/treelite/core/deepcopy"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Verification failures.
var (
	ErrLeak          = errors.New("allocation leaked")
	ErrDoubleRelease = errors.New("allocation released twice")
	ErrIdentity      = errors.New("handle identity violated")
)

// VerifyOptions controls one verification run.
type VerifyOptions struct {
	Iterations int // lifecycle cycles per variant
	Workers    int // goroutines per variant
}

// VariantReport is the outcome for one registered variant.
type VariantReport struct {
	Name           string
	Kind           string
	Cycles         int // completed lifecycle cycles
	Allocations    int
	Copies         int
	Moves          int
	Releases       int
	Takes          int
	Leaks          int
	DoubleReleases int
	Duration       time.Duration
	Err            error
}

// OK reports whether the variant passed.
func (r VariantReport) OK() bool {
	return r.Err == nil
}

// VerifyReport collects the per-variant results of a run.
type VerifyReport struct {
	Variants []VariantReport
}

// Err joins the failures of every variant, or returns nil when all passed.
func (r *VerifyReport) Err() error {
	var errs []error
	for _, v := range r.Variants {
		if v.Err != nil {
			errs = append(errs, fmt.Errorf("variant %q: %w", v.Name, v.Err))
		}
	}
	return errors.Join(errs...)
}

// VerifyService drives construct, copy, move, take and release cycles over
// every registered variant and checks the ownership accounting.
type VerifyService struct {
	variants *capability.Registry
	tracker  *memory.Tracker
	observer deepcopy.Observer
	ids      deepcopy.IDGenerator
	logger   zerolog.Logger
}

// NewVerifyService creates a verify service. observer receives every event in
// addition to the tracker and may be nil.
func NewVerifyService(variants *capability.Registry, tracker *memory.Tracker, observer deepcopy.Observer, logger zerolog.Logger) *VerifyService {
	return &VerifyService{
		variants: variants,
		tracker:  tracker,
		observer: observer,
		logger:   logger,
	}
}

// WithIDGenerator makes the handles of subsequent runs draw ids from g.
func (s *VerifyService) WithIDGenerator(g deepcopy.IDGenerator) *VerifyService {
	s.ids = g
	return s
}

// Run verifies every registered variant. The returned error is non-nil only
// when the run itself could not complete; variant failures are in the report.
func (s *VerifyService) Run(ctx context.Context, opts VerifyOptions) (*VerifyReport, error) {
	if opts.Iterations <= 0 {
		opts.Iterations = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	s.tracker.Reset()
	handleOpts := []deepcopy.Option{deepcopy.WithObserver(deepcopy.Observers(s.tracker, s.observer))}
	if s.ids != nil {
		handleOpts = append(handleOpts, deepcopy.WithIDGenerator(s.ids))
	}

	report := &VerifyReport{}
	for _, v := range s.variants.List() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		vr := s.runVariant(ctx, v, handleOpts, opts)
		report.Variants = append(report.Variants, vr)

		ev := s.logger.Info()
		if vr.Err != nil {
			ev = s.logger.Error().Err(vr.Err)
		}
		ev.Str("variant", vr.Name).
			Str("kind", vr.Kind).
			Int("cycles", vr.Cycles).
			Int("allocations", vr.Allocations).
			Int("leaks", vr.Leaks).
			Dur("duration", vr.Duration).
			Msg("variant verified")
	}
	return report, nil
}

func (s *VerifyService) runVariant(ctx context.Context, v capability.Variant, handleOpts []deepcopy.Option, opts VerifyOptions) VariantReport {
	start := time.Now()
	vr := VariantReport{
		Name: v.Name,
		Kind: capability.TypeName(v.New()),
	}

	var completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.Workers; w++ {
		n := opts.Iterations / opts.Workers
		if w < opts.Iterations%opts.Workers {
			n++
		}
		g.Go(func() error {
			for i := 0; i < n; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := Cycle(v, handleOpts...); err != nil {
					return err
				}
				completed.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	stats := s.tracker.StatsFor(vr.Kind)
	vr.Cycles = int(completed.Load())
	vr.Allocations = stats.Allocations
	vr.Copies = stats.Copies
	vr.Moves = stats.Moves
	vr.Releases = stats.Releases
	vr.Takes = stats.Takes
	vr.Leaks = stats.Live
	vr.DoubleReleases = stats.DoubleReleases
	vr.Duration = time.Since(start)

	switch {
	case err != nil:
		vr.Err = err
	case stats.DoubleReleases > 0:
		vr.Err = fmt.Errorf("%w: %d", ErrDoubleRelease, stats.DoubleReleases)
	case stats.Live > 0:
		vr.Err = fmt.Errorf("%w: %d live", ErrLeak, stats.Live)
	}
	return vr
}

// Cycle runs one ownership lifecycle over a fresh prototype of v and reports
// any contract violation as an error. opts apply to every handle created.
func Cycle(v capability.Variant, opts ...deepcopy.Option) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	h := deepcopy.New(v.New(), opts...)
	defer h.Release()

	c := h.Copy()
	defer c.Release()
	if c.ID() == h.ID() {
		return fmt.Errorf("%w: copy shares allocation %s", ErrIdentity, h.ID())
	}
	if !capability.SameType(c.Get(), h.Get()) {
		return &capability.ContractError{Op: "copy", Want: h.Kind(), Got: c.Kind()}
	}

	id := c.ID()
	m := c.Move()
	defer m.Release()
	if c.Valid() || m.ID() != id {
		return fmt.Errorf("%w: move did not transfer allocation %s", ErrIdentity, id)
	}

	a := deepcopy.Adopt(v.New(), opts...)
	if taken := a.Take(); capability.IsNil(taken) {
		return fmt.Errorf("%w: take returned nil", ErrIdentity)
	}
	return nil
}
