// Package memory provides in-memory implementations for testing and verification.
package memory

import (
	"sort"
	"sync"

	"github.com/crflynn/treelite/core/deepcopy"
	"github.com/google/uuid"
)

// Stats summarises ownership events (value type).
type Stats struct {
	Allocations    int // new + adopt + copy
	Copies         int
	Moves          int
	Releases       int
	Takes          int
	Live           int // allocations not yet released or taken
	DoubleReleases int // frees of an allocation already freed
	Unknown        int // moves or frees of an allocation never seen
}

// Allocation identifies one live allocation.
type Allocation struct {
	ID   uuid.UUID
	Kind string
}

// Tracker is an in-memory deepcopy.Observer that accounts for every allocation.
// Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	live   map[uuid.UUID]string // id -> kind
	freed  map[uuid.UUID]bool
	byKind map[string]*Stats
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Observe records one ownership event.
func (t *Tracker) Observe(ev deepcopy.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.kindStats(ev.Kind)

	switch {
	case ev.Op.Allocates():
		s.Allocations++
		if ev.Op == deepcopy.OpCopy {
			s.Copies++
		}
		t.live[ev.ID] = ev.Kind
		s.Live++

	case ev.Op == deepcopy.OpMove:
		s.Moves++
		if _, ok := t.live[ev.ID]; !ok {
			s.Unknown++
		}

	case ev.Op.Frees():
		if ev.Op == deepcopy.OpRelease {
			s.Releases++
		} else {
			s.Takes++
		}
		if _, ok := t.live[ev.ID]; ok {
			delete(t.live, ev.ID)
			t.freed[ev.ID] = true
			s.Live--
		} else if t.freed[ev.ID] {
			s.DoubleReleases++
		} else {
			s.Unknown++
		}
	}
}

func (t *Tracker) kindStats(kind string) *Stats {
	s, ok := t.byKind[kind]
	if !ok {
		s = &Stats{}
		t.byKind[kind] = s
	}
	return s
}

// Stats returns totals across all kinds.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total Stats
	for _, s := range t.byKind {
		total.Allocations += s.Allocations
		total.Copies += s.Copies
		total.Moves += s.Moves
		total.Releases += s.Releases
		total.Takes += s.Takes
		total.Live += s.Live
		total.DoubleReleases += s.DoubleReleases
		total.Unknown += s.Unknown
	}
	return total
}

// Allocations returns the number of allocations recorded.
func (t *Tracker) Allocations() int {
	return t.Stats().Allocations
}

// Live returns the number of allocations not yet released or taken.
func (t *Tracker) Live() int {
	return t.Stats().Live
}

// DoubleReleases returns the number of frees of already freed allocations.
func (t *Tracker) DoubleReleases() int {
	return t.Stats().DoubleReleases
}

// StatsFor returns the totals for one kind.
func (t *Tracker) StatsFor(kind string) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.byKind[kind]; ok {
		return *s
	}
	return Stats{}
}

// Kinds returns every kind seen so far, sorted.
func (t *Tracker) Kinds() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	kinds := make([]string, 0, len(t.byKind))
	for k := range t.byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Leaks returns the allocations that are still live, ordered by kind then id.
func (t *Tracker) Leaks() []Allocation {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]Allocation, 0, len(t.live))
	for id, kind := range t.live {
		result = append(result, Allocation{ID: id, Kind: kind})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Kind != result[j].Kind {
			return result[i].Kind < result[j].Kind
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}

// IsLive reports whether the allocation id is currently owned by some handle.
func (t *Tracker) IsLive(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.live[id]
	return ok
}

// Reset clears all recorded state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.live = make(map[uuid.UUID]string)
	t.freed = make(map[uuid.UUID]bool)
	t.byKind = make(map[string]*Stats)
}

// Ensure interface compliance.
var _ deepcopy.Observer = (*Tracker)(nil)
