package entry

import (
	"fmt"
	"math"
	"strings"

	"github.com/crflynn/treelite/core/capability"
)

// Row is a dense row of feature entries.
type Row struct {
	entries []Entry
}

// NewRow returns a row of n missing entries.
func NewRow(n int) *Row {
	return &Row{entries: make([]Entry, n)}
}

// FromDense builds a row from float values. NaN values become missing entries.
func FromDense(values []float32) *Row {
	r := NewRow(len(values))
	for i, v := range values {
		r.entries[i].SetFValue(v)
	}
	return r
}

// FromDense64 is FromDense for float64 input.
func FromDense64(values []float64) *Row {
	r := NewRow(len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		r.entries[i].SetFValue(float32(v))
	}
	return r
}

// Len returns the number of entries.
func (r *Row) Len() int {
	return len(r.entries)
}

// At returns a pointer to entry i. Mutations through it change the row.
func (r *Row) At(i int) *Entry {
	return &r.entries[i]
}

// Set stores a float value at i.
func (r *Row) Set(i int, v float32) {
	r.entries[i].SetFValue(v)
}

// NumMissing returns the number of missing entries.
func (r *Row) NumMissing() int {
	n := 0
	for i := range r.entries {
		if r.entries[i].IsMissing() {
			n++
		}
	}
	return n
}

// String renders the row as "[a, b, missing]".
func (r *Row) String() string {
	parts := make([]string, len(r.entries))
	for i := range r.entries {
		parts[i] = r.entries[i].String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Clone implements capability.Cloneable. The duplicate owns its own entries.
func (r *Row) Clone() capability.Cloneable {
	dup := capability.Duplicate(r)
	if r.entries != nil {
		dup.entries = make([]Entry, len(r.entries))
		copy(dup.entries, r.entries)
	}
	return dup
}

// MoveClone implements capability.Cloneable. The entries move to the duplicate
// and r becomes an empty row.
func (r *Row) MoveClone() capability.Cloneable {
	return capability.Steal(r)
}

// Register adds the entry variants to reg.
func Register(reg *capability.Registry) error {
	variants := []capability.Variant{
		{
			Name:        "entry",
			Description: "single feature slot (float, quantized or missing)",
			New:         func() capability.Cloneable { return NewFloat(0.5) },
		},
		{
			Name:        "row",
			Description: "dense row of feature entries",
			New:         func() capability.Cloneable { return FromDense([]float32{1, float32(math.NaN()), 3}) },
		},
	}

	for _, v := range variants {
		if err := reg.Register(v); err != nil {
			return fmt.Errorf("register %s: %w", v.Name, err)
		}
	}
	return nil
}
