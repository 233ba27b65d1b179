package payment

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"paygate/pkg/domain"
	"paygate/pkg/platform/sentinel"
)

// Test doubles for the store interfaces. The real memory/redis/postgres
// implementations live under store/ with their own suites and import this
// package for its types, so they cannot be used here.

type memoryVolumes struct {
	mu     sync.Mutex
	totals map[domain.Address]decimal.Decimal
}

func newMemoryVolumes() *memoryVolumes {
	return &memoryVolumes{totals: make(map[domain.Address]decimal.Decimal)}
}

func (s *memoryVolumes) Volume(_ context.Context, addr domain.Address) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals[addr.Normalized()], nil
}

func (s *memoryVolumes) Add(_ context.Context, addr domain.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := s.totals[addr.Normalized()].Add(amount)
	s.totals[addr.Normalized()] = total
	return total, nil
}

type memoryDecisions struct {
	mu    sync.Mutex
	saved map[domain.RequestID]AuthorizationDecision
}

func newMemoryDecisions() *memoryDecisions {
	return &memoryDecisions{saved: make(map[domain.RequestID]AuthorizationDecision)}
}

func (s *memoryDecisions) Save(_ context.Context, d AuthorizationDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saved[d.RequestID]; ok {
		return sentinel.ErrDuplicate
	}
	s.saved[d.RequestID] = d
	return nil
}

func (s *memoryDecisions) Find(_ context.Context, id domain.RequestID) (AuthorizationDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.saved[id]
	if !ok {
		return AuthorizationDecision{}, sentinel.ErrNotFound
	}
	return d, nil
}
