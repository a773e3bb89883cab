package idgen_test

import (
	"regexp"
	"testing"

	"github.com/crflynn/treelite/adapters/idgen"
	"github.com/crflynn/treelite/core/deepcopy"
	"github.com/crflynn/treelite/domain/entry"
	"github.com/google/uuid"
)

func TestUUID_New(t *testing.T) {
	g := idgen.UUID{}

	id := g.New().String()

	// UUID v4 format: 8-4-4-4-12 hex chars
	uuidRegex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if !uuidRegex.MatchString(id) {
		t.Errorf("ID %s doesn't match UUID v4 format", id)
	}
}

func TestUUID_New_Unique(t *testing.T) {
	g := idgen.UUID{}

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 1000; i++ {
		id := g.New()
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestSequential_New(t *testing.T) {
	g := idgen.NewSequential(0)

	tests := []string{
		"00000000-0000-0000-0000-000000000001",
		"00000000-0000-0000-0000-000000000002",
		"00000000-0000-0000-0000-000000000003",
	}
	for i, want := range tests {
		if got := g.New().String(); got != want {
			t.Errorf("ID %d = %s, want %s", i+1, got, want)
		}
	}
	if g.Count() != 3 {
		t.Errorf("Count() = %d, want 3", g.Count())
	}
}

func TestSequential_Namespace(t *testing.T) {
	g := idgen.NewSequential(0xabcd)

	id := g.New().String()
	if id != "00000000-0000-abcd-0000-000000000001" {
		t.Errorf("ID = %s, want 00000000-0000-abcd-0000-000000000001", id)
	}
}

func TestSequential_Reset(t *testing.T) {
	g := idgen.NewSequential(1)

	g.New() // 1
	g.New() // 2
	g.New() // 3

	g.Reset()

	first := idgen.NewSequential(1).New()
	if id := g.New(); id != first {
		t.Errorf("after reset ID = %s, want %s", id, first)
	}
}

func TestSequential_ConcurrentAccess(t *testing.T) {
	g := idgen.NewSequential(7)

	done := make(chan bool)
	ids := make(chan uuid.UUID, 1000)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				ids <- g.New()
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
	close(ids)

	seen := make(map[uuid.UUID]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %s", id)
		}
		seen[id] = true
	}

	if len(seen) != 1000 {
		t.Errorf("expected 1000 unique IDs, got %d", len(seen))
	}
}

func TestSequential_DrivesHandles(t *testing.T) {
	g := idgen.NewSequential(0)

	h := deepcopy.New[entry.Data](entry.NewFloat(1), deepcopy.WithIDGenerator(g))
	c := h.Copy()
	m := c.Move()

	if h.ID().String() != "00000000-0000-0000-0000-000000000001" {
		t.Errorf("handle ID = %s", h.ID())
	}
	if m.ID().String() != "00000000-0000-0000-0000-000000000002" {
		t.Errorf("copy ID = %s, want the second sequential id", m.ID())
	}
	if g.Count() != 2 {
		t.Errorf("Count() = %d, want 2 (move issues no id)", g.Count())
	}
}
