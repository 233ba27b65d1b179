package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paygate/internal/actor"
	"paygate/internal/identity"
	"paygate/pkg/domain"
	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/platform/httputil"
)

// IdentityHandler exposes verification sessions, status lookups, and the
// provider callback.
type IdentityHandler struct {
	client  *actor.IdentityClient
	service *identity.Service
	sender  actor.Sender
	logger  *slog.Logger
}

func NewIdentityHandler(client *actor.IdentityClient, svc *identity.Service, sender actor.Sender, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{client: client, service: svc, sender: sender, logger: logger}
}

// Register mounts identity endpoints on the router.
func (h *IdentityHandler) Register(r chi.Router) {
	r.Post("/identity/verify", h.HandleVerify)
	r.Get("/identity/status/{address}", h.HandleStatus)
	r.Get("/identity/proofs/{proofId}", h.HandleProofStatus)
	r.Post("/identity/sessions/{sessionId}/callback", h.HandleCallback)
}

// VerifyRequest asks for a verification session for one proof type.
type VerifyRequest struct {
	Address       string `json:"address"`
	ProofType     string `json:"proof_type"`
	RequiredValue any    `json:"required_value,omitempty"`
}

// VerifyResponse carries the opened session back to the caller.
type VerifyResponse struct {
	SessionID       domain.SessionID `json:"session_id"`
	Address         domain.Address   `json:"address"`
	ProofType       string           `json:"proof_type"`
	Status          string           `json:"status"`
	VerificationURL string           `json:"verification_url,omitempty"`
}

// HandleVerify handles POST /identity/verify requests.
func (h *IdentityHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[VerifyRequest](w, r, h.logger)
	if !ok {
		return
	}

	address, err := domain.ParseAddress(req.Address)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid address"))
		return
	}
	proofType, err := domain.ParseProofType(req.ProofType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	started, err := h.client.StartVerification(ctx, actor.RequestVerification{
		RequestID:     domain.NewRequestID(),
		Address:       address,
		Proof:         proofType,
		RequiredValue: req.RequiredValue,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "verification request not answered",
			"address", address, "proof_type", proofType, "error", err)
		httputil.WriteError(w, err)
		return
	}
	if started.Detail != "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, started.Detail))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, VerifyResponse{
		SessionID:       started.Session.ID,
		Address:         started.Session.Address,
		ProofType:       started.Session.ProofType.String(),
		Status:          string(started.Session.Status),
		VerificationURL: started.Session.VerificationURL,
	})
}

// StatusResponse is an address's aggregate identity state on the wire.
type StatusResponse struct {
	Address domain.Address                             `json:"address"`
	Level   string                                     `json:"level"`
	Proofs  map[domain.ProofType]identity.ProofSummary `json:"proofs"`
}

// HandleStatus handles GET /identity/status/{address} requests. It refreshes
// the ledger from the backend before answering.
func (h *IdentityHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	address, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid address"))
		return
	}

	status, err := h.service.Refresh(ctx, address)
	if err != nil {
		h.logger.ErrorContext(ctx, "identity status lookup failed", "address", address, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Address: status.Address,
		Level:   status.Level.String(),
		Proofs:  status.Proofs,
	})
}

// HandleProofStatus handles GET /identity/proofs/{proofId} requests.
func (h *IdentityHandler) HandleProofStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	proofID := chi.URLParam(r, "proofId")
	if proofID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "missing proof id"))
		return
	}

	status, err := h.service.ProofStatus(ctx, proofID)
	if err != nil {
		h.logger.ErrorContext(ctx, "proof status lookup failed", "proof_id", proofID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// CallbackRequest is the provider's completion report for a session.
type CallbackRequest struct {
	Verified bool `json:"verified"`
}

// HandleCallback handles POST /identity/sessions/{sessionId}/callback. The
// callback is applied asynchronously by the identity actor; a 202 only
// acknowledges receipt.
func (h *IdentityHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := domain.SessionID(chi.URLParam(r, "sessionId"))
	if sessionID.IsEmpty() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "missing session id"))
		return
	}

	req, ok := httputil.Decode[CallbackRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.sender.Send(actor.RoleIdentity, actor.SessionCallback{SessionID: sessionID, Verified: req.Verified}); err != nil {
		h.logger.ErrorContext(ctx, "verification callback not queued", "session_id", sessionID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
