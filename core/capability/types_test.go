package capability_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/crflynn/treelite/core/capability"
)

// =============================================================================
// Test variants
// =============================================================================

type counter struct {
	n    int
	hist []int
}

func (c *counter) Clone() capability.Cloneable {
	dup := capability.Duplicate(c)
	dup.hist = append([]int(nil), c.hist...)
	return dup
}

func (c *counter) MoveClone() capability.Cloneable {
	return capability.Steal(c)
}

type label string

func (l label) Clone() capability.Cloneable     { return l }
func (l label) MoveClone() capability.Cloneable { return l }

// liar returns a different type from MoveClone only.
type liar struct{}

func (*liar) Clone() capability.Cloneable     { return &liar{} }
func (*liar) MoveClone() capability.Cloneable { return label("liar") }

// void returns nil from Clone.
type void struct{}

func (*void) Clone() capability.Cloneable     { return nil }
func (*void) MoveClone() capability.Cloneable { return nil }

// twin clones into a different type that has the same name.
type twin struct{}

func (*twin) Clone() capability.Cloneable     { return localTwin() }
func (*twin) MoveClone() capability.Cloneable { return localTwin() }

func localTwin() capability.Cloneable {
	type twin struct{ *counter }
	return &twin{&counter{}}
}

// =============================================================================
// Contract Tests
// =============================================================================

func TestCheck_Valid(t *testing.T) {
	tests := []struct {
		name string
		v    capability.Cloneable
	}{
		{"pointer variant", &counter{n: 1}},
		{"value variant", label("x")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if err := capability.Check(tt.v); err != nil {
				t.Errorf("Check() error = %v", err)
			}
		})
	}
}

func TestCheck_LeavesReceiverUntouched(t *testing.T) {
	c := &counter{n: 4, hist: []int{1}}
	if err := capability.Check(c); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if c.n != 4 || len(c.hist) != 1 {
		t.Errorf("Check() modified receiver: %+v", c)
	}
}

func TestCheck_Violations(t *testing.T) {
	tests := []struct {
		name   string
		v      capability.Cloneable
		wantOp string
		got    string
	}{
		{"move_clone type mismatch", &liar{}, "move_clone", "capability_test.label"},
		{"nil duplicate", &void{}, "clone", "<nil>"},
		{"same-named type", &twin{}, "clone", "*capability_test.twin"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := capability.Check(tt.v)
			if err == nil {
				t.Fatal("Check() should fail")
			}
			if !errors.Is(err, capability.ErrContractViolation) {
				t.Errorf("errors.Is(err, ErrContractViolation) = false, err = %v", err)
			}

			var cerr *capability.ContractError
			if !errors.As(err, &cerr) {
				t.Fatalf("error should be *ContractError, got %T", err)
			}
			if cerr.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", cerr.Op, tt.wantOp)
			}
			if cerr.Got != tt.got {
				t.Errorf("Got = %q, want %q", cerr.Got, tt.got)
			}
		})
	}
}

func TestSameType(t *testing.T) {
	if !capability.SameType(&counter{n: 1}, &counter{n: 2}) {
		t.Error("SameType(*counter, *counter) = false, want true")
	}
	if capability.SameType(&twin{}, localTwin()) {
		t.Error("SameType of distinct types named twin = true, want false")
	}
	if capability.TypeName(&twin{}) != capability.TypeName(localTwin()) {
		t.Error("twin types should share a name")
	}
}

func TestContractError_Message(t *testing.T) {
	err := &capability.ContractError{Op: "clone", Want: "*a.B", Got: "*a.C"}
	msg := err.Error()

	for _, want := range []string{"cloneable contract violated", "clone", "*a.B", "*a.C"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, should contain %q", msg, want)
		}
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestDuplicate(t *testing.T) {
	src := &counter{n: 3}
	dup := capability.Duplicate(src)

	if dup == src {
		t.Fatal("Duplicate() returned the same allocation")
	}
	dup.n = 8
	if src.n != 3 {
		t.Errorf("src.n = %d, want 3", src.n)
	}
}

func TestSteal(t *testing.T) {
	src := &counter{n: 3, hist: []int{1, 2}}
	moved := capability.Steal(src)

	if moved.n != 3 || len(moved.hist) != 2 {
		t.Errorf("Steal() = %+v, want n=3 hist=[1 2]", moved)
	}
	if src.n != 0 || src.hist != nil {
		t.Errorf("source after Steal() = %+v, want zero value", src)
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{nil, "<nil>"},
		{&counter{}, "*capability_test.counter"},
		{label("x"), "capability_test.label"},
	}

	for _, tt := range tests {
		if got := capability.TypeName(tt.v); got != tt.want {
			t.Errorf("TypeName(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestIsNil(t *testing.T) {
	var c *counter
	var cl capability.Cloneable

	if !capability.IsNil(nil) {
		t.Error("IsNil(nil) = false")
	}
	if !capability.IsNil(c) {
		t.Error("IsNil(typed nil pointer) = false")
	}
	if !capability.IsNil(cl) {
		t.Error("IsNil(nil interface) = false")
	}
	if capability.IsNil(label("")) {
		t.Error("IsNil(value) = true")
	}
	if capability.IsNil(&counter{}) {
		t.Error("IsNil(non-nil pointer) = true")
	}
}
