// Package entry provides feature entry value types and pure quantization functions.
// Entries and rows are Cloneable variants and can be owned by deepcopy handles.
package entry

import (
	"fmt"
	"math"

	"github.com/crflynn/treelite/core/capability"
	"github.com/crflynn/treelite/core/formatter"
)

// Data is the capability of a single feature slot.
type Data interface {
	capability.Cloneable

	SetFValue(v float32)
	SetQValue(q int)
	SetMissing()
	IsMissing() bool
	FValue() float32
	QValue() int
}

// Kind reports which value an Entry currently holds.
type Kind int

const (
	Missing Kind = iota
	Float
	Quantized
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Float:
		return "float"
	case Quantized:
		return "quantized"
	default:
		return "unknown"
	}
}

// Entry is one feature slot: a float value, a quantized code, or missing.
// The zero value is missing.
type Entry struct {
	kind   Kind
	fvalue float32
	qvalue int
}

// NewFloat returns an entry holding v. NaN is stored as missing.
func NewFloat(v float32) *Entry {
	e := &Entry{}
	e.SetFValue(v)
	return e
}

// NewQuantized returns an entry holding the quantized code q.
func NewQuantized(q int) *Entry {
	return &Entry{kind: Quantized, qvalue: q}
}

// NewMissing returns a missing entry.
func NewMissing() *Entry {
	return &Entry{}
}

// SetFValue stores a float value. NaN marks the entry missing.
func (e *Entry) SetFValue(v float32) {
	if math.IsNaN(float64(v)) {
		e.SetMissing()
		return
	}
	e.kind = Float
	e.fvalue = v
}

// SetQValue stores a quantized code. A previously stored float value is kept.
func (e *Entry) SetQValue(q int) {
	e.kind = Quantized
	e.qvalue = q
}

// SetMissing marks the entry missing.
func (e *Entry) SetMissing() {
	*e = Entry{}
}

// IsMissing reports whether the entry holds no value.
func (e *Entry) IsMissing() bool {
	return e.kind == Missing
}

// FValue returns the float value (0 when missing).
func (e *Entry) FValue() float32 {
	return e.fvalue
}

// QValue returns the quantized code (0 unless quantized).
func (e *Entry) QValue() int {
	return e.qvalue
}

// Kind returns what the entry currently holds.
func (e *Entry) Kind() Kind {
	return e.kind
}

// String renders the entry for logs and listings.
func (e *Entry) String() string {
	switch e.kind {
	case Float:
		return formatter.FloatToString(float64(e.fvalue))
	case Quantized:
		return fmt.Sprintf("q%d", e.qvalue)
	default:
		return "missing"
	}
}

// Clone implements capability.Cloneable.
func (e *Entry) Clone() capability.Cloneable {
	return capability.Duplicate(e)
}

// MoveClone implements capability.Cloneable.
func (e *Entry) MoveClone() capability.Cloneable {
	return capability.Steal(e)
}

var _ Data = (*Entry)(nil)
