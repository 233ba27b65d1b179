// Package report publishes regulatory transaction reports and decision audit
// events. Every decision is audited; transfers the compliance engine flagged
// for reporting additionally produce a transaction report.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"paygate/internal/payment"
	"paygate/pkg/domain"
)

// Kind discriminates event payloads on the wire.
type Kind string

const (
	KindTransactionReport Kind = "transaction_report"
	KindDecisionAudit     Kind = "decision_audit"
)

// Event is one published report record.
type Event struct {
	Kind      Kind             `json:"kind"`
	RequestID domain.RequestID `json:"request_id"`
	From      domain.Address   `json:"from"`
	To        domain.Address   `json:"to"`
	Amount    string           `json:"amount"`
	Currency  string           `json:"currency"`
	Allowed   bool             `json:"allowed"`
	Stage     payment.Stage    `json:"stage"`
	Reason    string           `json:"reason,omitempty"`
	At        time.Time        `json:"at"`
}

// Publisher delivers report events to a sink.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// MemorySink collects events in memory. It backs tests and deployments
// without a broker.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Publish(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Events returns a snapshot of everything published so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Reporter turns decisions into published events.
type Reporter struct {
	publisher Publisher
	clock     func() time.Time
}

func NewReporter(p Publisher) *Reporter {
	return &Reporter{publisher: p, clock: time.Now}
}

// RecordDecision audits the decision and, when the compliance engine flagged
// the transfer for regulatory reporting, publishes a transaction report as
// well.
func (r *Reporter) RecordDecision(ctx context.Context, intent payment.PaymentIntent, d payment.AuthorizationDecision) error {
	base := Event{
		Kind:      KindDecisionAudit,
		RequestID: intent.RequestID,
		From:      intent.From,
		To:        intent.To,
		Amount:    normalizeAmount(intent.Amount),
		Currency:  intent.Currency,
		Allowed:   d.Allowed,
		Stage:     d.FailureStage,
		Reason:    d.Reason,
		At:        r.clock().UTC(),
	}
	if err := r.publisher.Publish(ctx, base); err != nil {
		return err
	}

	for _, action := range d.RequiredActions {
		if action != payment.RequirementReporting {
			continue
		}
		tr := base
		tr.Kind = KindTransactionReport
		if err := r.publisher.Publish(ctx, tr); err != nil {
			return err
		}
		break
	}
	return nil
}

// normalizeAmount canonicalizes the wire amount when it parses; a rejected
// malformed amount is audited verbatim.
func normalizeAmount(raw string) string {
	if v, err := decimal.NewFromString(raw); err == nil {
		return v.String()
	}
	return raw
}
