// Package capability defines the self-duplication capability for polymorphic values.
//
// A capability is a contract that a concrete variant implements.
// A variant is one concrete type reachable through the capability (e.g., *entry.Entry).
// A prototype is a fresh instance of a variant, used to verify the contract.
//
// Every variant must return a duplicate of exactly its own dynamic type from both
// Clone and MoveClone. Owning handles downcast the result back to the declared type
// and treat a mismatch as a programmer error.
package capability

import (
	"errors"
	"fmt"
	"reflect"
)

// Cloneable is implemented by every variant that can be owned by a deep-copy handle.
type Cloneable interface {
	// Clone returns an independent duplicate. The receiver is not modified.
	Clone() Cloneable

	// MoveClone returns a duplicate that may take over the receiver's internal
	// resources. The receiver is left valid but unspecified.
	// Implementations may simply call Clone.
	MoveClone() Cloneable
}

// ErrContractViolation is the sentinel wrapped by every ContractError.
var ErrContractViolation = errors.New("cloneable contract violated")

// ContractError reports a duplicate whose dynamic type differs from its source.
type ContractError struct {
	Op   string // "clone", "move_clone" or "downcast"
	Want string // expected dynamic type
	Got  string // dynamic type actually produced
}

// Error implements error.
func (e *ContractError) Error() string {
	return fmt.Sprintf("%v: %s produced %s, want %s", ErrContractViolation, e.Op, e.Got, e.Want)
}

// Unwrap returns ErrContractViolation.
func (e *ContractError) Unwrap() error {
	return ErrContractViolation
}

// TypeName returns the dynamic type name of v ("<nil>" for a nil interface).
func TypeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

// SameType reports whether a and b have identical dynamic types. Distinct
// types that share a name (function-local types, or equally named packages)
// are different.
func SameType(a, b any) bool {
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}

// IsNil reports whether v is a nil interface or an interface holding a nil pointer.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Check verifies that both duplication operations of v preserve its dynamic type
// and never return nil. MoveClone is exercised on a Clone so v itself is untouched.
func Check(v Cloneable) error {
	dup := v.Clone()
	if IsNil(dup) || !SameType(dup, v) {
		return &ContractError{Op: "clone", Want: TypeName(v), Got: TypeName(dup)}
	}

	moved := dup.MoveClone()
	if IsNil(moved) || !SameType(moved, v) {
		return &ContractError{Op: "move_clone", Want: TypeName(v), Got: TypeName(moved)}
	}

	return nil
}

// Duplicate copies the fields of *v into a new allocation.
// Variants whose fields are all values use it directly as their Clone body;
// variants holding slices, maps or handles copy those afterwards.
func Duplicate[T any](v *T) *T {
	dup := *v
	return &dup
}

// Steal moves the fields of *v into a new allocation and zeroes *v.
func Steal[T any](v *T) *T {
	moved := *v
	var zero T
	*v = zero
	return &moved
}
