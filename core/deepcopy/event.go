package deepcopy

import "github.com/google/uuid"

// Op identifies an ownership operation on a handle.
type Op int

const (
	// OpNew is an adoption by reference (the source value is cloned).
	OpNew Op = iota
	// OpAdopt is an adoption by move (the source value is move-cloned).
	OpAdopt
	// OpCopy is a duplicate-on-copy of another handle.
	OpCopy
	// OpMove transfers an allocation between handles without duplicating it.
	OpMove
	// OpRelease frees the owned allocation.
	OpRelease
	// OpTake moves the owned value out of the handle to the caller.
	OpTake
)

// String returns the string representation of the operation.
func (o Op) String() string {
	switch o {
	case OpNew:
		return "new"
	case OpAdopt:
		return "adopt"
	case OpCopy:
		return "copy"
	case OpMove:
		return "move"
	case OpRelease:
		return "release"
	case OpTake:
		return "take"
	default:
		return "unknown"
	}
}

// Allocates reports whether the operation creates a new allocation.
func (o Op) Allocates() bool {
	return o == OpNew || o == OpAdopt || o == OpCopy
}

// Frees reports whether the operation ends the handle's custody of an allocation.
func (o Op) Frees() bool {
	return o == OpRelease || o == OpTake
}

// Event describes one ownership operation.
type Event struct {
	Op Op

	// Kind is the dynamic type name of the owned object.
	Kind string

	// ID identifies the allocation the operation applies to.
	ID uuid.UUID

	// Parent is the allocation a copy was duplicated from (uuid.Nil otherwise).
	Parent uuid.UUID
}

// Observer receives ownership events. Observers shared between handles
// must be safe for concurrent use.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}

type fanout []Observer

func (f fanout) Observe(ev Event) {
	for _, o := range f {
		o.Observe(ev)
	}
}

// Observers combines several observers into one. Nil entries are skipped.
func Observers(obs ...Observer) Observer {
	out := make(fanout, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}
