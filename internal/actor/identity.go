package actor

import (
	"context"
	"log/slog"
	"time"

	"paygate/internal/correlator"
	"paygate/internal/identity"
)

// IdentityHandler serves verification requests and session callbacks, and
// expires stale sessions on a periodic tick.
type IdentityHandler struct {
	sessions *correlator.Correlator[VerificationStarted]
	service  *identity.Service
	logger   *slog.Logger
}

func NewIdentityHandler(sessions *correlator.Correlator[VerificationStarted], svc *identity.Service, logger *slog.Logger) *IdentityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityHandler{sessions: sessions, service: svc, logger: logger}
}

func (h *IdentityHandler) Handle(ctx context.Context, msg any) {
	switch m := msg.(type) {
	case RequestVerification:
		h.startSession(ctx, m)
	case SessionCallback:
		if _, err := h.service.CompleteSession(ctx, m.SessionID, m.Verified); err != nil {
			h.logger.WarnContext(ctx, "verification callback not applied",
				"session_id", m.SessionID, "error", err)
		}
	case sweepSessions:
		h.service.ExpireSessions(ctx)
	default:
		h.logger.WarnContext(ctx, "identity actor dropped unexpected message", "type", typeName(msg))
	}
}

func (h *IdentityHandler) startSession(ctx context.Context, m RequestVerification) {
	session, err := h.service.RequestVerification(ctx, m.Address, m.Proof, m.RequiredValue)
	resp := VerificationStarted{RequestID: m.RequestID, Session: session}
	if err != nil {
		resp.Detail = err.Error()
	}
	h.sessions.Resolve(ctx, m.RequestID, resp)
}

// IdentityClient is the caller-side facade for the identity actor: it
// registers a correlation slot, sends the request, and awaits the response
// outside any actor's mailbox.
type IdentityClient struct {
	sender   Sender
	sessions *correlator.Correlator[VerificationStarted]
}

func NewIdentityClient(sender Sender, sessions *correlator.Correlator[VerificationStarted]) *IdentityClient {
	return &IdentityClient{sender: sender, sessions: sessions}
}

// StartVerification opens a verification session through the identity actor.
func (c *IdentityClient) StartVerification(ctx context.Context, m RequestVerification) (VerificationStarted, error) {
	waiter, err := c.sessions.Register(m.RequestID)
	if err != nil {
		return VerificationStarted{}, err
	}
	if err := c.sender.Send(RoleIdentity, m); err != nil {
		c.sessions.Cancel(m.RequestID)
		return VerificationStarted{}, err
	}
	return waiter.Await(ctx)
}

// SweepLoop sends an expiry tick into the identity mailbox at the given
// interval, so expiry runs serialized with the other identity messages.
func SweepLoop(ctx context.Context, sender Sender, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = sender.Send(RoleIdentity, sweepSessions{})
		}
	}
}
