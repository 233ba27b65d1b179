package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"paygate/pkg/domain"
)

// PaymentIntent is one payment request as it enters the pipeline. The amount
// stays in its raw wire form until the validator parses it; a malformed
// amount is a terminal validation failure, not a zero. Intents are immutable
// once dispatched and consumed exactly once by the authorizer.
type PaymentIntent struct {
	RequestID domain.RequestID
	From      domain.Address
	To        domain.Address
	Amount    string
	Currency  string
	Metadata  map[string]string
}

// Stage identifies the pipeline stage a decision failed at.
type Stage string

const (
	StageValidation Stage = "validation"
	StageSecurity   Stage = "security"
	StageCompliance Stage = "compliance"
	StageLimit      Stage = "limit"
	StageNone       Stage = "none"
)

// Validation reason strings reported to callers. These are part of the
// response contract, so they are constants rather than ad hoc messages.
const (
	ReasonMissingFields       = "missing required fields"
	ReasonInvalidAmountFormat = "invalid amount format"
	ReasonBelowMinimum        = "amount below minimum"
	ReasonExceedsMaximum      = "amount exceeds maximum"
	ReasonUnsupportedCurrency = "unsupported currency"
	ReasonBadRecipient        = "invalid recipient address format"
)

// ValidationResult is the outcome of the field/amount validator. When Valid,
// Amount carries the parsed value so later stages never re-parse the wire
// form.
type ValidationResult struct {
	Valid  bool
	Reason string
	Amount decimal.Decimal
}

// CheckOutcome is one security sub-check's result. The screener reports every
// sub-check it attempted, including the failing one.
type CheckOutcome struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// ScreenResult aggregates the blacklist, sanction, and fraud checks.
type ScreenResult struct {
	Passed   bool
	Reason   string
	Attempts []CheckOutcome
}

// ComplianceResult lists the requirements a payment triggered and which of
// them remain unmet. Compliant holds iff Unmet is empty.
type ComplianceResult struct {
	Compliant bool
	Triggered []string
	Unmet     []string
}

// GateResult reports the transaction limit check. Headroom is the remaining
// daily capacity and is returned whether or not the check passed so callers
// can surface it.
type GateResult struct {
	Allowed  bool
	Reason   string
	Headroom decimal.Decimal
}

// AuthorizationDecision is the terminal outcome for one PaymentIntent. It is
// produced once and never mutated; re-running the same request returns the
// stored decision.
type AuthorizationDecision struct {
	RequestID       domain.RequestID `json:"request_id"`
	Allowed         bool             `json:"allowed"`
	FailureStage    Stage            `json:"failure_stage"`
	Reason          string           `json:"reason,omitempty"`
	RequiredActions []string         `json:"required_actions,omitempty"`
	DailyHeadroom   decimal.Decimal  `json:"daily_headroom"`
	EvaluatedAt     time.Time        `json:"evaluated_at"`
}
