package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"paygate/internal/rules"
	"paygate/pkg/domain"
	dErrors "paygate/pkg/domain-errors"
)

// Sub-check names in the order the screener runs them.
const (
	CheckBlacklist = "blacklist"
	CheckSanction  = "sanction"
	CheckFraud     = "fraud_pattern"
)

// SanctionsChecker is the external sanctions screening collaborator. A
// returned error means the check could not run at all, which is distinct from
// a non-compliant result.
type SanctionsChecker interface {
	Sanctioned(ctx context.Context, from, to domain.Address) (bool, string, error)
}

// StaticSanctions screens against a fixed deny-list. It backs the screener
// when no external sanctions provider is configured.
type StaticSanctions struct {
	Denied []domain.Address
}

func (s StaticSanctions) Sanctioned(_ context.Context, from, to domain.Address) (bool, string, error) {
	for _, d := range s.Denied {
		if d.Equal(from) || d.Equal(to) {
			return true, "counterparty on sanctions list", nil
		}
	}
	return false, "", nil
}

// Screener runs the security checks in a fixed order and stops at the first
// failure. Every attempted sub-check is reported, including the failing one,
// so callers can see how far screening got.
type Screener struct {
	rules     rules.SecurityRules
	sanctions SanctionsChecker
}

func NewScreener(r rules.SecurityRules, sanctions SanctionsChecker) *Screener {
	if sanctions == nil {
		sanctions = StaticSanctions{Denied: r.Blacklist}
	}
	return &Screener{rules: r, sanctions: sanctions}
}

// Screen evaluates blacklist membership, sanctions, and the fraud heuristic
// for a validated intent. A collaborator failure surfaces as an error so the
// caller can distinguish "screening unavailable" from "screening failed".
func (s *Screener) Screen(ctx context.Context, intent PaymentIntent, amount decimal.Decimal) (ScreenResult, error) {
	res := ScreenResult{Passed: true}

	if s.rules.Blacklisted(intent.To) || s.rules.Blacklisted(intent.From) {
		res.Attempts = append(res.Attempts, CheckOutcome{Name: CheckBlacklist, Reason: "address is blacklisted"})
		res.Passed = false
		res.Reason = "address is blacklisted"
		return res, nil
	}
	res.Attempts = append(res.Attempts, CheckOutcome{Name: CheckBlacklist, Passed: true})

	sanctioned, why, err := s.sanctions.Sanctioned(ctx, intent.From, intent.To)
	if err != nil {
		return ScreenResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "sanctions screening unavailable")
	}
	if sanctioned {
		res.Attempts = append(res.Attempts, CheckOutcome{Name: CheckSanction, Reason: why})
		res.Passed = false
		res.Reason = why
		return res, nil
	}
	res.Attempts = append(res.Attempts, CheckOutcome{Name: CheckSanction, Passed: true})

	if amount.GreaterThan(s.rules.FraudAmountThreshold) && intent.Currency == s.rules.FraudCurrency {
		reason := fmt.Sprintf("suspicious transfer pattern: amount above %s %s",
			s.rules.FraudAmountThreshold, s.rules.FraudCurrency)
		res.Attempts = append(res.Attempts, CheckOutcome{Name: CheckFraud, Reason: reason})
		res.Passed = false
		res.Reason = reason
		return res, nil
	}
	res.Attempts = append(res.Attempts, CheckOutcome{Name: CheckFraud, Passed: true})

	return res, nil
}
