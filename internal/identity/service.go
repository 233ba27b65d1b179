package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"paygate/internal/backend"
	"paygate/internal/identity/metrics"
	"paygate/internal/rules"
	"paygate/pkg/domain"
	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/platform/sentinel"
)

// TransferKind distinguishes payment shapes for verification requirements.
type TransferKind string

const (
	TransferStandard      TransferKind = "standard"
	TransferInternational TransferKind = "international"
	TransferSubscription  TransferKind = "subscription"
)

// Service owns the identity side of the pipeline: proof aggregation, session
// lifecycle, and the verification requirement engine.
type Service struct {
	rules    rules.Config
	backend  backend.Client
	ledger   *Ledger
	sessions *SessionStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires the identity service. The ledger and session store are
// owned here; callers share the ledger read-side through the service.
func NewService(cfg rules.Config, client backend.Client, opts ...Option) *Service {
	s := &Service{
		rules:    cfg,
		backend:  client,
		ledger:   NewLedger(),
		sessions: NewSessionStore(cfg.SessionTimeout),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ledger exposes the proof aggregation for collaborating components.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// Refresh pulls the address's proof records from the backend into the ledger
// and returns the derived status. The backend is the source of truth; the
// ledger is the caller's snapshot.
func (s *Service) Refresh(ctx context.Context, address domain.Address) (Status, error) {
	proofs, err := s.backend.Proofs(ctx, address)
	if err != nil {
		return Status{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "identity backend unavailable")
	}

	records := make([]ProofRecord, 0, len(proofs))
	for _, p := range proofs {
		proofType, err := domain.ParseProofType(p.ProofType)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping proof with unknown type",
				"address", address,
				"proof_type", p.ProofType,
			)
			continue
		}
		records = append(records, ProofRecord{
			ID:        p.ID,
			Address:   address,
			Type:      proofType,
			Verified:  p.Verified,
			CreatedAt: p.CreatedAt,
		})
	}
	s.ledger.Replace(address, records)

	return s.buildStatus(address), nil
}

// Level returns the address's verification level, pulling proofs from the
// backend first when the ledger holds none for the address. Payment prechecks
// go through here so a sender whose proofs live only at the backend is
// recognized on a fresh process. A refresh failure falls back to the local
// ledger rather than blocking the lookup.
func (s *Service) Level(ctx context.Context, address domain.Address) domain.VerificationLevel {
	if s.backend != nil && len(s.ledger.Snapshot(address)) == 0 {
		if _, err := s.Refresh(ctx, address); err != nil {
			s.logger.WarnContext(ctx, "identity refresh failed, using local ledger",
				"address", address,
				"error", err,
			)
		}
	}
	return s.ledger.Level(address)
}

// StatusFor returns the address's status from the current ledger snapshot
// without consulting the backend.
func (s *Service) StatusFor(address domain.Address) Status {
	return s.buildStatus(address)
}

func (s *Service) buildStatus(address domain.Address) Status {
	s.metrics.IncrementLevelLookup()
	summary := make(map[domain.ProofType]ProofSummary, len(domain.AllProofTypes))
	for _, t := range domain.AllProofTypes {
		summary[t] = ProofSummary{}
	}
	for _, p := range s.ledger.Snapshot(address) {
		entry := summary[p.Type]
		entry.Count++
		if p.Verified {
			entry.Verified = true
		}
		summary[p.Type] = entry
	}
	return Status{
		Address: address,
		Level:   s.ledger.Level(address),
		Proofs:  summary,
	}
}

// RequestVerification opens a verification session for one proof type.
func (s *Service) RequestVerification(ctx context.Context, address domain.Address, proofType domain.ProofType, requiredValue any) (VerificationSession, error) {
	if !proofType.IsValid() {
		return VerificationSession{}, dErrors.New(dErrors.CodeInvalidInput, "unsupported proof type: "+proofType.String())
	}

	handle, err := s.backend.CreateVerificationSession(ctx, address, proofType, requiredValue)
	if err != nil {
		return VerificationSession{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create verification session")
	}

	sessionID := domain.SessionID(handle.SessionID)
	if sessionID.IsEmpty() {
		sessionID = domain.NewSessionID()
	}
	session, err := s.sessions.Create(sessionID, address, proofType, handle.VerificationURL)
	if err != nil {
		return VerificationSession{}, dErrors.Wrap(err, dErrors.CodeConflict, "verification session already exists")
	}

	s.metrics.IncrementSessionCreated(proofType.String())
	s.logger.InfoContext(ctx, "verification session created",
		"address", address,
		"proof_type", proofType,
		"session_id", session.ID,
	)
	return session, nil
}

// CompleteSession applies a completion callback. Callbacks landing on a
// terminal session are ignored; a verified completion appends the proof to
// the ledger exactly once.
func (s *Service) CompleteSession(ctx context.Context, sessionID domain.SessionID, verified bool) (VerificationSession, error) {
	before, err := s.sessions.Find(sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return VerificationSession{}, dErrors.New(dErrors.CodeNotFound, "unknown verification session")
		}
		return VerificationSession{}, dErrors.Wrap(err, dErrors.CodeInternal, "session lookup failed")
	}
	if before.Status.Terminal() {
		s.logger.InfoContext(ctx, "duplicate session completion ignored",
			"session_id", sessionID,
			"status", before.Status,
		)
		return before, nil
	}

	session, err := s.sessions.Complete(sessionID, verified)
	if err != nil {
		return VerificationSession{}, dErrors.Wrap(err, dErrors.CodeInternal, "session completion failed")
	}

	if session.Status == SessionVerified {
		s.ledger.Append(ProofRecord{
			ID:        session.ID.String(),
			Address:   session.Address,
			Type:      session.ProofType,
			Verified:  true,
			CreatedAt: session.CompletedAt,
		})
	}
	s.metrics.IncrementSessionCompleted(string(session.Status))
	return session, nil
}

// ProofStatus asks the backend for the state of one proof verification.
func (s *Service) ProofStatus(ctx context.Context, proofID string) (backend.SessionStatus, error) {
	status, err := s.backend.SessionStatus(ctx, proofID)
	if err != nil {
		return backend.SessionStatus{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "proof status lookup failed")
	}
	return status, nil
}

// ExpireSessions sweeps pending sessions past their timeout. Called
// periodically by the identity actor.
func (s *Service) ExpireSessions(ctx context.Context) {
	for _, session := range s.sessions.Sweep() {
		s.metrics.IncrementSessionCompleted(string(SessionExpired))
		s.logger.InfoContext(ctx, "verification session expired",
			"session_id", session.ID,
			"address", session.Address,
			"proof_type", session.ProofType,
			"pending_for", time.Since(session.CreatedAt).String(),
		)
	}
}

// Requirements returns the proof types a payment of the given shape demands
// and which of them the address is still missing.
func (s *Service) Requirements(address domain.Address, amount decimal.Decimal, kind TransferKind) (required, missing []Requirement) {
	if amount.GreaterThan(s.rules.Verification.RequiredProofAmount) || kind == TransferSubscription {
		required = append(required, Requirement{Type: domain.ProofAge, Reason: "high value transaction or subscription service"})
	}
	if kind == TransferInternational {
		required = append(required, Requirement{Type: domain.ProofCountry, Reason: "international transaction"})
	}
	// Sanction screening applies to every payment.
	required = append(required, Requirement{Type: domain.ProofSanction, Reason: "compliance requirement"})

	verified := s.ledger.VerifiedTypes(address)
	for _, req := range required {
		if !verified[req.Type] {
			missing = append(missing, req)
		}
	}
	return required, missing
}

// Promote grants the enterprise level by administrative action.
func (s *Service) Promote(ctx context.Context, address domain.Address) {
	s.ledger.Promote(address)
	s.logger.InfoContext(ctx, "address promoted to enterprise", "address", address)
}
