package capability

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Variant describes a concrete type registered with the capability.
type Variant struct {
	// Name is the unique variant name (e.g., "entry", "row")
	Name string

	// Description is a human-readable description
	Description string

	// New returns a fresh prototype of the variant
	New func() Cloneable
}

// Validate checks if the variant is valid.
func (v Variant) Validate() error {
	var errs []error

	if v.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if v.New == nil {
		errs = append(errs, errors.New("constructor is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid variant: %w", errors.Join(errs...))
	}
	return nil
}

// Registry manages the concrete variants known to the capability.
// Thread-safe for concurrent access.
type Registry struct {
	mu sync.RWMutex

	// variants maps variant name -> Variant
	variants map[string]Variant

	// byType maps dynamic type -> variant name
	byType map[reflect.Type]string
}

// NewRegistry creates a new variant registry.
func NewRegistry() *Registry {
	return &Registry{
		variants: make(map[string]Variant),
		byType:   make(map[reflect.Type]string),
	}
}

// Register adds a variant to the registry.
// Returns error if a variant with the same name or dynamic type already exists.
func (r *Registry) Register(v Variant) error {
	if err := v.Validate(); err != nil {
		return err
	}

	proto := v.New()
	if IsNil(proto) {
		return fmt.Errorf("variant %q: constructor returned nil", v.Name)
	}
	typ := reflect.TypeOf(proto)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.variants[v.Name]; exists {
		return fmt.Errorf("variant %q already registered", v.Name)
	}
	if other, exists := r.byType[typ]; exists {
		return fmt.Errorf("type %s already registered as variant %q", typ, other)
	}

	r.variants[v.Name] = v
	r.byType[typ] = v.Name
	return nil
}

// Unregister removes a variant from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.variants[name]; !exists {
		return fmt.Errorf("variant %q not found", name)
	}

	delete(r.variants, name)
	for typ, n := range r.byType {
		if n == name {
			delete(r.byType, typ)
		}
	}
	return nil
}

// Get retrieves a variant by name.
func (r *Registry) Get(name string) (Variant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.variants[name]
	return v, ok
}

// Lookup returns the variant name registered for the dynamic type of c.
func (r *Registry) Lookup(c Cloneable) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.byType[reflect.TypeOf(c)]
	return name, ok
}

// List returns all registered variants sorted by name.
func (r *Registry) List() []Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Variant, 0, len(r.variants))
	for _, v := range r.variants {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Len returns the number of registered variants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.variants)
}

// Verify checks the duplication contract of a fresh prototype of every variant.
func (r *Registry) Verify() error {
	var errs []error
	for _, v := range r.List() {
		if err := Check(v.New()); err != nil {
			errs = append(errs, fmt.Errorf("variant %q: %w", v.Name, err))
		}
	}
	return errors.Join(errs...)
}

// DefaultRegistry is the global variant registry.
var DefaultRegistry = NewRegistry()

// Register adds a variant to the default registry.
func Register(v Variant) error {
	return DefaultRegistry.Register(v)
}

// Verify checks every variant in the default registry.
func Verify() error {
	return DefaultRegistry.Verify()
}
