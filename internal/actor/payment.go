package actor

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"paygate/internal/backend"
	"paygate/internal/payment"
	"paygate/internal/payment/metrics"
	"paygate/internal/report"
)

// PaymentHandler owns the authorization pipeline and the dispatch path. Only
// an authorized decision reaches the blockchain collaborator, and daily
// volume is committed only after the backend confirms dispatch, so retries of
// failed dispatches never double count.
type PaymentHandler struct {
	sender   Sender
	auth     *payment.Authorizer
	backend  backend.Client
	reporter *report.Reporter
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewPaymentHandler(sender Sender, auth *payment.Authorizer, client backend.Client, reporter *report.Reporter, m *metrics.Metrics, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{sender: sender, auth: auth, backend: client, reporter: reporter, metrics: m, logger: logger}
}

func (p *PaymentHandler) Handle(ctx context.Context, msg any) {
	switch m := msg.(type) {
	case AuthorizePayment:
		p.authorize(ctx, m.Intent)
	default:
		p.logger.WarnContext(ctx, "payment actor dropped unexpected message", "type", typeName(msg))
	}
}

func (p *PaymentHandler) authorize(ctx context.Context, intent payment.PaymentIntent) {
	// A replayed request returns the stored decision without re-running any
	// stage or dispatching again.
	if prior, decided, err := p.auth.Decided(ctx, intent.RequestID); err == nil && decided {
		p.reply(ctx, PaymentDecided{RequestID: intent.RequestID, Decision: prior, Detail: "decision replayed"})
		return
	}

	decision, err := p.auth.Authorize(ctx, intent)
	if err != nil {
		// Transient collaborator failure: no terminal decision exists, the
		// caller may retry the same request.
		p.logger.ErrorContext(ctx, "authorization could not complete",
			"request_id", intent.RequestID, "error", err)
		p.reply(ctx, PaymentDecided{RequestID: intent.RequestID, Detail: "collaborator unavailable"})
		return
	}

	if p.reporter != nil {
		if rerr := p.reporter.RecordDecision(ctx, intent, decision); rerr != nil {
			p.logger.ErrorContext(ctx, "failed to publish decision report",
				"request_id", intent.RequestID, "error", rerr)
		}
	}

	result := PaymentDecided{RequestID: intent.RequestID, Decision: decision}
	if decision.Allowed {
		result = p.dispatch(ctx, intent, result)
	}
	p.reply(ctx, result)
}

// dispatch sends an authorized payment on-chain and records the volume once
// the backend confirms it.
func (p *PaymentHandler) dispatch(ctx context.Context, intent payment.PaymentIntent, result PaymentDecided) PaymentDecided {
	amount, err := decimal.NewFromString(intent.Amount)
	if err != nil {
		// Authorization already validated the amount.
		result.Detail = "internal amount state inconsistent"
		return result
	}

	dr, err := p.backend.SendPayment(ctx, intent.From, intent.To, amount.String(), intent.Currency)
	if err != nil || !dr.Success {
		p.metrics.DispatchError()
		p.logger.ErrorContext(ctx, "payment dispatch failed",
			"request_id", intent.RequestID, "error", err)
		result.Detail = "payment dispatch failed"
		if serr := p.backend.UpdatePaymentStatus(ctx, intent.RequestID, dr.Hash, "failed"); serr != nil {
			p.logger.WarnContext(ctx, "failed to record dispatch failure", "request_id", intent.RequestID, "error", serr)
		}
		return result
	}

	if err := p.auth.Gate().Commit(ctx, intent.From, amount); err != nil {
		p.logger.ErrorContext(ctx, "dispatched payment not recorded against daily volume",
			"request_id", intent.RequestID, "error", err)
	} else {
		p.metrics.VolumeCommitted()
	}

	if err := p.backend.UpdatePaymentStatus(ctx, intent.RequestID, dr.Hash, "completed"); err != nil {
		p.logger.WarnContext(ctx, "failed to record dispatch status", "request_id", intent.RequestID, "error", err)
	}

	p.logger.InfoContext(ctx, "payment dispatched",
		"request_id", intent.RequestID, "hash", dr.Hash)
	result.Dispatched = true
	result.TxHash = dr.Hash
	return result
}

func (p *PaymentHandler) reply(ctx context.Context, result PaymentDecided) {
	if err := p.sender.Send(RoleWallet, result); err != nil {
		p.logger.ErrorContext(ctx, "failed to deliver decision to wallet actor",
			"request_id", result.RequestID, "error", err)
	}
}
