package actor

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"paygate/internal/correlator"
	"paygate/internal/identity"
	"paygate/internal/payment"
	"paygate/internal/rules"
)

// Wallet is the entry actor. It runs the cheap local checks (identity
// requirements, limit precheck) before handing the intent to the payment
// actor, and resolves the caller's correlation slot when the decision comes
// back.
type Wallet struct {
	sender   Sender
	results  *correlator.Correlator[PaymentDecided]
	identity *identity.Service
	gate     *payment.Gate
	rules    rules.VerificationRules
	logger   *slog.Logger
}

func NewWallet(sender Sender, results *correlator.Correlator[PaymentDecided], ids *identity.Service, gate *payment.Gate, vr rules.VerificationRules, logger *slog.Logger) *Wallet {
	if logger == nil {
		logger = slog.Default()
	}
	return &Wallet{sender: sender, results: results, identity: ids, gate: gate, rules: vr, logger: logger}
}

// Submit registers the request and either rejects it locally or forwards it
// to the payment actor. A duplicate in-flight request ID is rejected before
// any pipeline stage runs. The returned waiter resolves when the decision
// arrives or the correlation timeout fires.
func (w *Wallet) Submit(ctx context.Context, intent payment.PaymentIntent, kind identity.TransferKind) (*correlator.Waiter[PaymentDecided], error) {
	waiter, err := w.results.Register(intent.RequestID)
	if err != nil {
		return nil, err
	}

	if rejected, ok := w.precheck(ctx, intent, kind); ok {
		// Local rejection still resolves through the correlator so every
		// caller sees one response shape.
		w.results.Resolve(ctx, intent.RequestID, rejected)
		return waiter, nil
	}

	if err := w.sender.Send(RolePayment, AuthorizePayment{Intent: intent}); err != nil {
		w.results.Cancel(intent.RequestID)
		return nil, err
	}
	return waiter, nil
}

// precheck runs the wallet-local gates. Anything it cannot decide cheaply is
// left to the payment actor's full pipeline.
func (w *Wallet) precheck(ctx context.Context, intent payment.PaymentIntent, kind identity.TransferKind) (PaymentDecided, bool) {
	amount, err := decimal.NewFromString(intent.Amount)
	if err != nil {
		// Let the validator produce the canonical reason.
		return PaymentDecided{}, false
	}

	if amount.GreaterThan(w.rules.RequiredProofAmount) {
		need := w.rules.RequiredLevel(amount)
		if !w.identity.Level(ctx, intent.From).AtLeast(need) {
			_, missing := w.identity.Requirements(intent.From, amount, kind)
			actions := make([]string, 0, len(missing))
			for _, m := range missing {
				actions = append(actions, "verify:"+string(m.Type))
			}
			w.logger.InfoContext(ctx, "payment requires identity verification",
				"request_id", intent.RequestID, "from", intent.From, "required_level", need, "missing", actions)
			return PaymentDecided{
				RequestID: intent.RequestID,
				Decision: payment.AuthorizationDecision{
					RequestID:       intent.RequestID,
					FailureStage:    payment.StageCompliance,
					Reason:          "identity verification required",
					RequiredActions: actions,
					EvaluatedAt:     time.Now().UTC(),
				},
			}, true
		}
	}

	gate, err := w.gate.Check(ctx, intent.From, amount)
	if err != nil {
		// Volume store outage: defer to the payment actor rather than
		// rejecting locally.
		w.logger.WarnContext(ctx, "limit precheck unavailable", "request_id", intent.RequestID, "error", err)
		return PaymentDecided{}, false
	}
	if !gate.Allowed {
		return PaymentDecided{
			RequestID: intent.RequestID,
			Decision: payment.AuthorizationDecision{
				RequestID:     intent.RequestID,
				FailureStage:  payment.StageLimit,
				Reason:        gate.Reason,
				DailyHeadroom: gate.Headroom,
				EvaluatedAt:   time.Now().UTC(),
			},
		}, true
	}

	return PaymentDecided{}, false
}

// Handle resolves decisions flowing back from the payment actor. Responses
// with no waiting request are dropped by the correlator with a logged
// anomaly.
func (w *Wallet) Handle(ctx context.Context, msg any) {
	switch m := msg.(type) {
	case PaymentDecided:
		w.results.Resolve(ctx, m.RequestID, m)
	default:
		w.logger.WarnContext(ctx, "wallet actor dropped unexpected message", "type", typeName(msg))
	}
}
