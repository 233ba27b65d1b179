package httptransport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"paygate/internal/actor"
	"paygate/internal/identity"
	"paygate/internal/payment"
	"paygate/internal/rules"
	"paygate/pkg/domain"
	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/platform/httputil"
	"paygate/pkg/platform/sentinel"
)

// PaymentHandler exposes payment submission and limit queries.
type PaymentHandler struct {
	wallet *actor.Wallet
	gate   *payment.Gate
	limits rules.LimitRules
	logger *slog.Logger
}

func NewPaymentHandler(wallet *actor.Wallet, gate *payment.Gate, limits rules.LimitRules, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{wallet: wallet, gate: gate, limits: limits, logger: logger}
}

// Register mounts payment endpoints on the router.
func (h *PaymentHandler) Register(r chi.Router) {
	r.Post("/payments/send", h.HandleSend)
	r.Get("/payments/limits/{address}", h.HandleLimits)
}

// SendRequest is the wire form of a payment submission.
type SendRequest struct {
	RequestID string `json:"request_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Kind      string `json:"kind"`
}

// SendResponse reports the decision and, for authorized payments, the
// dispatch outcome.
type SendResponse struct {
	RequestID       domain.RequestID `json:"request_id"`
	Allowed         bool             `json:"allowed"`
	FailureStage    payment.Stage    `json:"failure_stage"`
	Reason          string           `json:"reason,omitempty"`
	RequiredActions []string         `json:"required_actions,omitempty"`
	DailyHeadroom   string           `json:"daily_headroom"`
	Dispatched      bool             `json:"dispatched"`
	TxHash          string           `json:"tx_hash,omitempty"`
}

// HandleSend handles POST /payments/send requests.
func (h *PaymentHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[SendRequest](w, r, h.logger)
	if !ok {
		return
	}

	kind := identity.TransferStandard
	if req.Kind != "" {
		kind = identity.TransferKind(req.Kind)
	}

	requestID := domain.RequestID(req.RequestID)
	if requestID == "" {
		requestID = domain.NewRequestID()
	}

	intent := payment.PaymentIntent{
		RequestID: requestID,
		From:      domain.Address(req.From),
		To:        domain.Address(req.To),
		Amount:    req.Amount,
		Currency:  req.Currency,
	}

	waiter, err := h.wallet.Submit(ctx, intent, kind)
	if err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			err = dErrors.Wrap(err, dErrors.CodeConflict, "request already in flight")
		}
		h.logger.WarnContext(ctx, "payment submission rejected", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	decided, err := waiter.Await(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "payment decision not received", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	if decided.Decision.RequestID == "" {
		// No terminal decision was produced; the caller may retry the same
		// request.
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, decided.Detail))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SendResponse{
		RequestID:       requestID,
		Allowed:         decided.Decision.Allowed,
		FailureStage:    decided.Decision.FailureStage,
		Reason:          decided.Decision.Reason,
		RequiredActions: decided.Decision.RequiredActions,
		DailyHeadroom:   decided.Decision.DailyHeadroom.String(),
		Dispatched:      decided.Dispatched,
		TxHash:          decided.TxHash,
	})
}

// LimitsResponse reports an address's configured and remaining limits.
type LimitsResponse struct {
	Address        domain.Address `json:"address"`
	MaxSingle      string         `json:"max_single"`
	MaxDaily       string         `json:"max_daily"`
	DailyRemaining string         `json:"daily_remaining"`
}

// HandleLimits handles GET /payments/limits/{address} requests.
func (h *PaymentHandler) HandleLimits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	address, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid address"))
		return
	}

	gate, err := h.gate.Check(ctx, address, decimal.Zero)
	if err != nil {
		h.logger.ErrorContext(ctx, "limit lookup failed", "address", address, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LimitsResponse{
		Address:        address.Normalized(),
		MaxSingle:      h.limits.MaxSingle.String(),
		MaxDaily:       h.limits.MaxDaily.String(),
		DailyRemaining: gate.Headroom.String(),
	})
}
