package capability_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/crflynn/treelite/core/capability"
)

// =============================================================================
// Registry Tests
// =============================================================================

func counterVariant() capability.Variant {
	return capability.Variant{
		Name:        "counter",
		Description: "mutable counter",
		New:         func() capability.Cloneable { return &counter{} },
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := capability.NewRegistry()

	if err := reg.Register(counterVariant()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := reg.Get("counter")
	if !ok {
		t.Fatal("Get() should find registered variant")
	}
	if got.Description != "mutable counter" {
		t.Errorf("Get() description = %v, want %v", got.Description, "mutable counter")
	}

	name, ok := reg.Lookup(&counter{n: 9})
	if !ok || name != "counter" {
		t.Errorf("Lookup() = %q, %v, want counter, true", name, ok)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := capability.NewRegistry()

	if err := reg.Register(counterVariant()); err != nil {
		t.Fatalf("First Register() error = %v", err)
	}

	if err := reg.Register(counterVariant()); err == nil {
		t.Error("Second Register() should fail with duplicate name")
	}

	sameType := counterVariant()
	sameType.Name = "counter2"
	err := reg.Register(sameType)
	if err == nil || !strings.Contains(err.Error(), "already registered as variant") {
		t.Errorf("Register() with duplicate type error = %v", err)
	}
}

func TestRegistry_SameNamedTypesAreDistinct(t *testing.T) {
	reg := capability.NewRegistry()

	if err := reg.Register(capability.Variant{Name: "twin", New: func() capability.Cloneable { return &twin{} }}); err != nil {
		t.Fatalf("Register(twin) error = %v", err)
	}
	if err := reg.Register(capability.Variant{Name: "local", New: localTwin}); err != nil {
		t.Fatalf("Register(local) error = %v", err)
	}

	if name, ok := reg.Lookup(&twin{}); !ok || name != "twin" {
		t.Errorf("Lookup(twin) = %q, %v, want twin, true", name, ok)
	}
	if name, ok := reg.Lookup(localTwin()); !ok || name != "local" {
		t.Errorf("Lookup(local) = %q, %v, want local, true", name, ok)
	}
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	reg := capability.NewRegistry()

	tests := []struct {
		name string
		v    capability.Variant
	}{
		{"missing name", capability.Variant{New: func() capability.Cloneable { return &counter{} }}},
		{"missing constructor", capability.Variant{Name: "x"}},
		{"nil prototype", capability.Variant{Name: "x", New: func() capability.Cloneable { return nil }}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if err := reg.Register(tt.v); err == nil {
				t.Error("Register() should fail")
			}
		})
	}

	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := capability.NewRegistry()
	_ = reg.Register(counterVariant())

	if err := reg.Unregister("counter"); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if _, ok := reg.Get("counter"); ok {
		t.Error("Get() should not find unregistered variant")
	}
	if _, ok := reg.Lookup(&counter{}); ok {
		t.Error("Lookup() should not find unregistered type")
	}
	if err := reg.Unregister("counter"); err == nil {
		t.Error("Unregister() of missing variant should fail")
	}

	// The type can be registered again under a new name
	v := counterVariant()
	v.Name = "renamed"
	if err := reg.Register(v); err != nil {
		t.Errorf("Register() after Unregister() error = %v", err)
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	reg := capability.NewRegistry()
	_ = reg.Register(capability.Variant{Name: "zeta", New: func() capability.Cloneable { return label("z") }})
	_ = reg.Register(counterVariant())

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("List() len = %d, want 2", len(list))
	}
	if list[0].Name != "counter" || list[1].Name != "zeta" {
		t.Errorf("List() order = [%s %s], want [counter zeta]", list[0].Name, list[1].Name)
	}
}

func TestRegistry_Verify(t *testing.T) {
	reg := capability.NewRegistry()
	_ = reg.Register(counterVariant())
	_ = reg.Register(capability.Variant{Name: "label", New: func() capability.Cloneable { return label("l") }})

	if err := reg.Verify(); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	_ = reg.Register(capability.Variant{Name: "liar", New: func() capability.Cloneable { return &liar{} }})

	err := reg.Verify()
	if err == nil {
		t.Fatal("Verify() should fail with a contract-violating variant")
	}
	if !errors.Is(err, capability.ErrContractViolation) {
		t.Errorf("errors.Is(err, ErrContractViolation) = false, err = %v", err)
	}
	if !strings.Contains(err.Error(), `variant "liar"`) {
		t.Errorf("Verify() error should name the variant, got %v", err)
	}
}
