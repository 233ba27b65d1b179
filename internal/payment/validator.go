package payment

import (
	"github.com/shopspring/decimal"

	"paygate/internal/rules"
)

// Validator applies the field and amount rules to an intent. The rules run in
// a fixed order and stop at the first failure, so a request with several
// problems reports the earliest one deterministically.
type Validator struct {
	rules rules.PaymentRules
}

func NewValidator(r rules.PaymentRules) *Validator {
	return &Validator{rules: r}
}

// Validate checks the intent without side effects. The zero value of a field
// counts as missing; amounts are parsed exactly, never rounded.
func (v *Validator) Validate(intent PaymentIntent) ValidationResult {
	if intent.To == "" || intent.Amount == "" || intent.Currency == "" {
		return ValidationResult{Reason: ReasonMissingFields}
	}

	amount, err := decimal.NewFromString(intent.Amount)
	if err != nil {
		return ValidationResult{Reason: ReasonInvalidAmountFormat}
	}

	if amount.LessThan(v.rules.MinAmount) {
		return ValidationResult{Reason: ReasonBelowMinimum}
	}
	if amount.GreaterThan(v.rules.MaxAmount) {
		return ValidationResult{Reason: ReasonExceedsMaximum}
	}
	if !v.rules.Supports(intent.Currency) {
		return ValidationResult{Reason: ReasonUnsupportedCurrency}
	}
	if !intent.To.Valid() {
		return ValidationResult{Reason: ReasonBadRecipient}
	}

	return ValidationResult{Valid: true, Amount: amount}
}
