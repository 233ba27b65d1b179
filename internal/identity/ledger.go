package identity

import (
	"sync"

	"paygate/pkg/domain"
)

// LevelFor derives the verification level from a set of proof records: it
// counts distinct verified proof types and maps the count through the fixed
// table. Pure given its input; enterprise is never derived here.
func LevelFor(proofs []ProofRecord) domain.VerificationLevel {
	seen := make(map[domain.ProofType]bool, len(domain.AllProofTypes))
	for _, p := range proofs {
		if p.Verified && p.Type.IsValid() {
			seen[p.Type] = true
		}
	}
	return domain.LevelForProofCount(len(seen))
}

// Ledger aggregates proof records per address. Writes for one address are
// serialized behind the ledger lock; reads take a snapshot so callers never
// observe a half-applied update. Enterprise promotions are stored as an
// explicit override because the derivation can never produce that level.
type Ledger struct {
	mu         sync.RWMutex
	records    map[domain.Address][]ProofRecord
	enterprise map[domain.Address]bool
}

func NewLedger() *Ledger {
	return &Ledger{
		records:    make(map[domain.Address][]ProofRecord),
		enterprise: make(map[domain.Address]bool),
	}
}

// Replace swaps an address's record set with a fresh snapshot from the source
// of truth.
func (l *Ledger) Replace(address domain.Address, proofs []ProofRecord) {
	key := address.Normalized()
	cp := make([]ProofRecord, len(proofs))
	copy(cp, proofs)
	l.mu.Lock()
	l.records[key] = cp
	l.mu.Unlock()
}

// Append adds one proof record, superseding an earlier record of the same ID.
func (l *Ledger) Append(record ProofRecord) {
	key := record.Address.Normalized()
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.records[key] {
		if existing.ID != "" && existing.ID == record.ID {
			l.records[key][i] = record
			return
		}
	}
	l.records[key] = append(l.records[key], record)
}

// Snapshot returns a copy of the address's current records.
func (l *Ledger) Snapshot(address domain.Address) []ProofRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	recs := l.records[address.Normalized()]
	cp := make([]ProofRecord, len(recs))
	copy(cp, recs)
	return cp
}

// Level returns the address's current verification level, honoring an
// enterprise override when present.
func (l *Ledger) Level(address domain.Address) domain.VerificationLevel {
	key := address.Normalized()
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.enterprise[key] {
		return domain.LevelEnterprise
	}
	return LevelFor(l.records[key])
}

// Promote marks an address as enterprise. This is the only path to that
// level.
func (l *Ledger) Promote(address domain.Address) {
	l.mu.Lock()
	l.enterprise[address.Normalized()] = true
	l.mu.Unlock()
}

// VerifiedTypes returns the set of proof types currently verified for the
// address.
func (l *Ledger) VerifiedTypes(address domain.Address) map[domain.ProofType]bool {
	out := make(map[domain.ProofType]bool)
	for _, p := range l.Snapshot(address) {
		if p.Verified {
			out[p.Type] = true
		}
	}
	return out
}
