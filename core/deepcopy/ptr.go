// Package deepcopy provides Ptr, an owning handle with value semantics for
// polymorphic objects.
//
// A Ptr owns exactly one object implementing capability.Cloneable. Copying the
// handle duplicates the object through the capability, so the copy shares no
// mutable storage with the source. Moving the handle transfers the allocation
// and empties the source.
//
// Usage:
//
//	p := deepcopy.New[entry.Data](entry.NewFloat(1.5))
//	q := p.Copy()   // independent duplicate, dynamically still *entry.Entry
//	r := p.Move()   // r owns p's allocation; p must not be used again
//	r.Get().SetMissing()
//	r.Release()
//
// Variants with value receivers can be owned, but Get returns a copy of the
// owned value, so they are read-only through the handle. Use pointer variants
// when the owned object must be mutated in place.
//
// A Ptr is not safe for concurrent use. Handles produced by Copy own disjoint
// allocations and may be used from different goroutines.
package deepcopy

import (
	"errors"
	"reflect"

	"github.com/crflynn/treelite/core/capability"
	"github.com/google/uuid"
)

var (
	// ErrMovedFrom is the panic value when a moved-from or released handle is used.
	ErrMovedFrom = errors.New("deepcopy: use of moved-from or released handle")

	// ErrNilValue is the panic value when a handle is constructed from a nil value.
	ErrNilValue = errors.New("deepcopy: cannot own a nil value")
)

// noCopy makes go vet's copylocks check flag accidental copies of a Ptr.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Ptr is an owning duplicate-on-copy handle.
// Always use Copy or Move; assigning a Ptr struct would alias its allocation.
type Ptr[T capability.Cloneable] struct {
	noCopy noCopy

	val   T
	id    uuid.UUID
	valid bool
	obs   Observer
	ids   IDGenerator
}

// Option configures a handle at construction.
type Option func(*options)

type options struct {
	observer Observer
	ids      IDGenerator
}

// IDGenerator issues allocation ids. Generators shared between handles
// must be safe for concurrent use.
type IDGenerator interface {
	New() uuid.UUID
}

type randomIDs struct{}

func (randomIDs) New() uuid.UUID {
	return uuid.New()
}

// WithObserver reports the handle's ownership events to o.
// Copies and moves of the handle inherit the observer.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithIDGenerator draws allocation ids from g instead of random UUIDs.
// Copies of the handle inherit the generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(opts *options) {
		opts.ids = g
	}
}

// New adopts a duplicate of v. The caller keeps v and may continue to use it.
func New[T capability.Cloneable](v T, opts ...Option) *Ptr[T] {
	return adopt(v, OpNew, opts)
}

// Adopt takes ownership of v's state by move-cloning it. The caller gives up v,
// which is left valid but unspecified.
func Adopt[T capability.Cloneable](v T, opts ...Option) *Ptr[T] {
	return adopt(v, OpAdopt, opts)
}

func adopt[T capability.Cloneable](v T, op Op, opts []Option) *Ptr[T] {
	if capability.IsNil(v) {
		panic(ErrNilValue)
	}

	o := options{ids: randomIDs{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = randomIDs{}
	}

	p := &Ptr[T]{
		val:   duplicate(v, op == OpAdopt),
		id:    o.ids.New(),
		valid: true,
		obs:   o.observer,
		ids:   o.ids,
	}
	p.emit(op, uuid.Nil)
	return p
}

// Copy returns a new handle owning an independent duplicate of the owned object.
func (p *Ptr[T]) Copy() *Ptr[T] {
	src := p.Get()

	q := &Ptr[T]{
		val:   duplicate(src, false),
		id:    p.ids.New(),
		valid: true,
		obs:   p.obs,
		ids:   p.ids,
	}
	q.emit(OpCopy, p.id)
	return q
}

// Move transfers the owned allocation to a new handle without duplicating it.
// p is emptied and must not be dereferenced afterwards.
func (p *Ptr[T]) Move() *Ptr[T] {
	p.mustValid()

	q := &Ptr[T]{
		val:   p.val,
		id:    p.id,
		valid: true,
		obs:   p.obs,
		ids:   p.ids,
	}
	p.clear()
	q.emit(OpMove, uuid.Nil)
	return q
}

// Get returns the owned object. For pointer variants, mutations through the
// result are visible through p and through no other handle; value variants
// return a copy.
// Get panics with ErrMovedFrom if p has been moved from or released.
func (p *Ptr[T]) Get() T {
	p.mustValid()
	return p.val
}

// Take moves the owned object out of the handle and returns it.
// p is emptied and must not be dereferenced afterwards.
func (p *Ptr[T]) Take() T {
	p.mustValid()

	v := p.val
	p.emit(OpTake, uuid.Nil)
	p.clear()
	return v
}

// Release frees the owned allocation. Releasing an empty handle is a no-op,
// so an allocation is released exactly once.
func (p *Ptr[T]) Release() {
	if p == nil || !p.valid {
		return
	}
	p.emit(OpRelease, uuid.Nil)
	p.clear()
}

// Valid reports whether p currently owns an object.
func (p *Ptr[T]) Valid() bool {
	return p != nil && p.valid
}

// ID identifies the owned allocation. It is preserved by Move and fresh after Copy.
// Returns uuid.Nil for an empty handle.
func (p *Ptr[T]) ID() uuid.UUID {
	if !p.Valid() {
		return uuid.Nil
	}
	return p.id
}

// Kind returns the dynamic type name of the owned object, or "" for an empty handle.
func (p *Ptr[T]) Kind() string {
	if !p.Valid() {
		return ""
	}
	return capability.TypeName(p.val)
}

// Downcast converts a duplicate back to the declared type T.
// It panics with a *capability.ContractError when c is nil or does not implement T.
func Downcast[T capability.Cloneable](c capability.Cloneable) T {
	if !capability.IsNil(c) {
		if v, ok := c.(T); ok {
			return v
		}
	}
	panic(&capability.ContractError{
		Op:   "downcast",
		Want: reflect.TypeOf((*T)(nil)).Elem().String(),
		Got:  capability.TypeName(c),
	})
}

// duplicate clones src through the capability and enforces that the duplicate
// has exactly the dynamic type of src.
func duplicate[T capability.Cloneable](src T, moving bool) T {
	op := "clone"
	var dup capability.Cloneable
	if moving {
		op = "move_clone"
		dup = src.MoveClone()
	} else {
		dup = src.Clone()
	}

	if capability.IsNil(dup) || !capability.SameType(dup, src) {
		panic(&capability.ContractError{Op: op, Want: capability.TypeName(src), Got: capability.TypeName(dup)})
	}
	return Downcast[T](dup)
}

func (p *Ptr[T]) mustValid() {
	if p == nil || !p.valid {
		panic(ErrMovedFrom)
	}
}

func (p *Ptr[T]) clear() {
	var zero T
	p.val = zero
	p.id = uuid.Nil
	p.valid = false
}

func (p *Ptr[T]) emit(op Op, parent uuid.UUID) {
	if p.obs == nil {
		return
	}
	p.obs.Observe(Event{
		Op:     op,
		Kind:   capability.TypeName(p.val),
		ID:     p.id,
		Parent: parent,
	})
}
