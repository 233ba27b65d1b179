// Package volume tracks per-address payment volume over a rolling 24 hour
// window. The memory store suits single-instance deployments and tests; the
// Redis store shares the window across instances.
package volume

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"paygate/pkg/domain"
)

// Window is the rolling period daily limits are measured over.
const Window = 24 * time.Hour

// Clock abstracts time.Now for testability.
type Clock func() time.Time

type entry struct {
	at     time.Time
	amount decimal.Decimal
}

// InMemoryVolumeStore keeps each address's recent payments in memory and
// prunes entries that fall out of the window on every access.
type InMemoryVolumeStore struct {
	mu      sync.Mutex
	entries map[domain.Address][]entry
	clock   Clock
}

// MemoryOption configures an InMemoryVolumeStore.
type MemoryOption func(*InMemoryVolumeStore)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) MemoryOption {
	return func(s *InMemoryVolumeStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewMemory(opts ...MemoryOption) *InMemoryVolumeStore {
	s := &InMemoryVolumeStore{
		entries: make(map[domain.Address][]entry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *InMemoryVolumeStore) Volume(_ context.Context, addr domain.Address) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneAndSum(addr), nil
}

func (s *InMemoryVolumeStore) Add(_ context.Context, addr domain.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := addr.Normalized()
	s.entries[key] = append(s.entries[key], entry{at: s.clock(), amount: amount})
	return s.pruneAndSum(addr), nil
}

// pruneAndSum drops expired entries and returns the remaining total. Caller
// holds the lock.
func (s *InMemoryVolumeStore) pruneAndSum(addr domain.Address) decimal.Decimal {
	key := addr.Normalized()
	cutoff := s.clock().Add(-Window)

	kept := s.entries[key][:0]
	total := decimal.Zero
	for _, e := range s.entries[key] {
		if e.at.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
		total = total.Add(e.amount)
	}
	if len(kept) == 0 {
		delete(s.entries, key)
	} else {
		s.entries[key] = kept
	}
	return total
}
