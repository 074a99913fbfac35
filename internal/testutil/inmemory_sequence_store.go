package testutil

import (
	"context"
	"sync"

	"github.com/solarinvoice/invoicer/internal/domain/invoice"
)

var _ invoice.SequenceRepository = (*InMemorySequenceStore)(nil)

// InMemorySequenceStore stands in for the invoice_sequences table. The mutex
// plays the role of the row lock taken by the upsert.
type InMemorySequenceStore struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func NewInMemorySequenceStore() *InMemorySequenceStore {
	return &InMemorySequenceStore{values: make(map[string]int64)}
}

func (s *InMemorySequenceStore) NextInvoiceSequence(ctx context.Context, scope string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return 0, s.err
	}
	s.values[scope]++
	return s.values[scope], nil
}

// SetLastValue moves the counter of scope, as a manual database edit would
func (s *InMemorySequenceStore) SetLastValue(scope string, v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope] = v
}

// LastValue returns the current counter value of scope
func (s *InMemorySequenceStore) LastValue(scope string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[scope]
}

// FailWith makes every allocation fail with err until cleared with nil
func (s *InMemorySequenceStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Snapshot implements Transactional; the counter rolls back with the transaction
func (s *InMemorySequenceStore) Snapshot() func() {
	s.mu.Lock()
	saved := make(map[string]int64, len(s.values))
	for k, v := range s.values {
		saved[k] = v
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.values = saved
	}
}

func (s *InMemorySequenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]int64)
	s.err = nil
}
