// Package decision persists authorization decisions. The store doubles as the
// idempotence cache (re-running a request returns the stored decision) and as
// the audit trail.
package decision

import (
	"context"
	"sync"

	"paygate/internal/payment"
	"paygate/pkg/domain"
	"paygate/pkg/platform/sentinel"
)

// InMemoryDecisionStore keeps decisions in a map. Suits single-instance
// deployments and tests.
type InMemoryDecisionStore struct {
	mu        sync.RWMutex
	decisions map[domain.RequestID]payment.AuthorizationDecision
}

func NewMemory() *InMemoryDecisionStore {
	return &InMemoryDecisionStore{
		decisions: make(map[domain.RequestID]payment.AuthorizationDecision),
	}
}

// Save stores a decision. A request's decision is written once; a second save
// for the same request returns ErrDuplicate so callers can't silently
// overwrite an audit record.
func (s *InMemoryDecisionStore) Save(_ context.Context, d payment.AuthorizationDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.decisions[d.RequestID]; exists {
		return sentinel.ErrDuplicate
	}
	s.decisions[d.RequestID] = d
	return nil
}

func (s *InMemoryDecisionStore) Find(_ context.Context, id domain.RequestID) (payment.AuthorizationDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.decisions[id]
	if !exists {
		return payment.AuthorizationDecision{}, sentinel.ErrNotFound
	}
	return d, nil
}
