// Package idgen provides allocation ID generators for deepcopy handles.
package idgen

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/crflynn/treelite/core/deepcopy"
	"github.com/google/uuid"
)

// UUID generates random UUIDs.
type UUID struct{}

// New generates a new UUID v4.
func (UUID) New() uuid.UUID {
	return uuid.New()
}

// Sequential generates sequential IDs (for testing).
// The counter occupies the low 8 bytes; the high 8 bytes hold the namespace.
type Sequential struct {
	namespace uint64
	counter   uint64
}

// NewSequential creates a sequential ID generator in namespace.
func NewSequential(namespace uint64) *Sequential {
	return &Sequential{namespace: namespace}
}

// New generates the next sequential ID.
func (s *Sequential) New() uuid.UUID {
	n := atomic.AddUint64(&s.counter, 1)

	var id uuid.UUID
	binary.BigEndian.PutUint64(id[:8], s.namespace)
	binary.BigEndian.PutUint64(id[8:], n)
	return id
}

// Count returns the number of IDs issued since the last reset.
func (s *Sequential) Count() uint64 {
	return atomic.LoadUint64(&s.counter)
}

// Reset resets the counter (for testing).
func (s *Sequential) Reset() {
	atomic.StoreUint64(&s.counter, 0)
}

// Ensure interface compliance.
var (
	_ deepcopy.IDGenerator = UUID{}
	_ deepcopy.IDGenerator = (*Sequential)(nil)
)
