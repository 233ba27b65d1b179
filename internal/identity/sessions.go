package identity

import (
	"sync"
	"time"

	"paygate/pkg/domain"
	"paygate/pkg/platform/sentinel"
)

// SessionStore keeps verification sessions and enforces the lifecycle:
// pending is the only state transitions leave from, terminal states absorb
// duplicate completions silently.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*VerificationSession
	timeout  time.Duration
	now      func() time.Time
}

// NewSessionStore builds an in-memory session store. timeout bounds how long
// a session may stay pending before Sweep marks it expired.
func NewSessionStore(timeout time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*VerificationSession),
		timeout:  timeout,
		now:      time.Now,
	}
}

// WithClock overrides the store clock; used by tests to drive expiry.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

// Create registers a new pending session.
func (s *SessionStore) Create(id domain.SessionID, address domain.Address, proofType domain.ProofType, verificationURL string) (VerificationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[id]; exists {
		return VerificationSession{}, sentinel.ErrConflict
	}
	session := &VerificationSession{
		ID:              id,
		Address:         address,
		ProofType:       proofType,
		Status:          SessionPending,
		VerificationURL: verificationURL,
		CreatedAt:       s.now(),
	}
	s.sessions[id] = session
	return *session, nil
}

// Find returns the session by ID.
func (s *SessionStore) Find(id domain.SessionID) (VerificationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return VerificationSession{}, sentinel.ErrNotFound
	}
	return *session, nil
}

// Complete moves a pending session to verified or failed. Completions that
// arrive after a terminal state are ignored and the stored session returned
// unchanged, which makes completion callbacks idempotent.
func (s *SessionStore) Complete(id domain.SessionID, verified bool) (VerificationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return VerificationSession{}, sentinel.ErrNotFound
	}
	if session.Status.Terminal() {
		return *session, nil
	}
	if verified {
		session.Status = SessionVerified
	} else {
		session.Status = SessionFailed
	}
	session.CompletedAt = s.now()
	return *session, nil
}

// Sweep expires pending sessions whose timeout elapsed and returns them.
// Expired is terminal; a completion callback arriving later is ignored.
func (s *SessionStore) Sweep() []VerificationSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var expired []VerificationSession
	for _, session := range s.sessions {
		if session.Status == SessionPending && now.Sub(session.CreatedAt) >= s.timeout {
			session.Status = SessionExpired
			session.CompletedAt = now
			expired = append(expired, *session)
		}
	}
	return expired
}
