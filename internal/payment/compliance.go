package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"paygate/internal/rules"
	"paygate/pkg/domain"
	dErrors "paygate/pkg/domain-errors"
)

// Compliance requirement names. Each threshold is evaluated independently, so
// a single payment can trigger several at once.
const (
	RequirementAML       = "aml_check"
	RequirementKYC       = "kyc_verification"
	RequirementReporting = "transaction_reporting"
)

// AMLChecker supplies the external anti-money-laundering signal for a
// transfer. A returned error means the signal is unavailable, not that the
// check failed.
type AMLChecker interface {
	Cleared(ctx context.Context, from, to domain.Address, amount decimal.Decimal) (bool, error)
}

// PermissiveAML clears every transfer. It stands in when no AML provider is
// configured, which matches treating the AML requirement as satisfied by the
// act of running the check.
type PermissiveAML struct{}

func (PermissiveAML) Cleared(context.Context, domain.Address, domain.Address, decimal.Decimal) (bool, error) {
	return true, nil
}

// LevelResolver reports the current verification level for an address. The
// identity ledger satisfies this.
type LevelResolver interface {
	Level(addr domain.Address) domain.VerificationLevel
}

// ComplianceEngine evaluates the threshold-based requirements against the AML
// signal and the sender's verification level. Reporting is a duty on the
// processor rather than the sender, so it is recorded as triggered but never
// blocks a payment; the authorizer turns it into a required action and a
// published report.
type ComplianceEngine struct {
	rules  rules.ComplianceRules
	aml    AMLChecker
	levels LevelResolver
}

func NewComplianceEngine(r rules.ComplianceRules, aml AMLChecker, levels LevelResolver) *ComplianceEngine {
	if aml == nil {
		aml = PermissiveAML{}
	}
	return &ComplianceEngine{rules: r, aml: aml, levels: levels}
}

// Check evaluates every triggered requirement. The result is compliant iff no
// triggered requirement is unmet.
func (e *ComplianceEngine) Check(ctx context.Context, intent PaymentIntent, amount decimal.Decimal) (ComplianceResult, error) {
	var res ComplianceResult

	if amount.GreaterThanOrEqual(e.rules.AMLCheckAmount) {
		res.Triggered = append(res.Triggered, RequirementAML)
		cleared, err := e.aml.Cleared(ctx, intent.From, intent.To, amount)
		if err != nil {
			return ComplianceResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "aml signal unavailable")
		}
		if !cleared {
			res.Unmet = append(res.Unmet, RequirementAML)
		}
	}

	if amount.GreaterThanOrEqual(e.rules.KYCRequiredAmount) {
		res.Triggered = append(res.Triggered, RequirementKYC)
		level := domain.LevelUnverified
		if e.levels != nil {
			level = e.levels.Level(intent.From)
		}
		if !level.AtLeast(domain.LevelBasic) {
			res.Unmet = append(res.Unmet, RequirementKYC)
		}
	}

	if amount.GreaterThanOrEqual(e.rules.ReportingThreshold) {
		res.Triggered = append(res.Triggered, RequirementReporting)
	}

	res.Compliant = len(res.Unmet) == 0
	return res, nil
}
