package identity

import (
	"time"

	"paygate/pkg/domain"
)

// ProofRecord is one identity attestation for an address. Records are only
// appended or superseded, never deleted; the verification level is always
// recomputed from the current set.
type ProofRecord struct {
	ID        string
	Address   domain.Address
	Type      domain.ProofType
	Verified  bool
	CreatedAt time.Time
}

// SessionStatus is the lifecycle state of a verification session.
type SessionStatus string

const (
	SessionPending  SessionStatus = "pending"
	SessionVerified SessionStatus = "verified"
	SessionFailed   SessionStatus = "failed"
	SessionExpired  SessionStatus = "expired"
)

// Terminal reports whether no further transition is allowed out of the state.
func (s SessionStatus) Terminal() bool {
	return s == SessionVerified || s == SessionFailed || s == SessionExpired
}

// VerificationSession tracks one in-flight proof verification. pending is the
// only non-terminal state; verified, failed, and expired are terminal and
// duplicate completion callbacks after a terminal state are ignored.
type VerificationSession struct {
	ID              domain.SessionID
	Address         domain.Address
	ProofType       domain.ProofType
	Status          SessionStatus
	VerificationURL string
	CreatedAt       time.Time
	CompletedAt     time.Time
}

// ProofSummary is the per-type rollup returned by identity status lookups.
type ProofSummary struct {
	Verified bool `json:"verified"`
	Count    int  `json:"count"`
}

// Status is an address's aggregate identity state.
type Status struct {
	Address domain.Address                   `json:"address"`
	Level   domain.VerificationLevel         `json:"-"`
	Proofs  map[domain.ProofType]ProofSummary `json:"proofs"`
}

// Requirement names one proof type a payment still needs.
type Requirement struct {
	Type   domain.ProofType `json:"type"`
	Reason string           `json:"reason"`
}
