package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate/internal/rules"
)

const (
	testSender    = "0x1111111111111111111111111111111111111111"
	testRecipient = "0x2222222222222222222222222222222222222222"
)

func validIntent() PaymentIntent {
	return PaymentIntent{
		RequestID: "req-1",
		From:      testSender,
		To:        testRecipient,
		Amount:    "10",
		Currency:  "MATIC",
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator(rules.Default().Payment)

	tests := []struct {
		name   string
		mutate func(*PaymentIntent)
		reason string
	}{
		{"valid", func(*PaymentIntent) {}, ""},
		{"missing recipient", func(i *PaymentIntent) { i.To = "" }, ReasonMissingFields},
		{"missing amount", func(i *PaymentIntent) { i.Amount = "" }, ReasonMissingFields},
		{"missing currency", func(i *PaymentIntent) { i.Currency = "" }, ReasonMissingFields},
		{"malformed amount", func(i *PaymentIntent) { i.Amount = "ten" }, ReasonInvalidAmountFormat},
		{"amount with stray unit", func(i *PaymentIntent) { i.Amount = "10 MATIC" }, ReasonInvalidAmountFormat},
		{"below minimum", func(i *PaymentIntent) { i.Amount = "0.0000009" }, ReasonBelowMinimum},
		{"zero", func(i *PaymentIntent) { i.Amount = "0" }, ReasonBelowMinimum},
		{"negative", func(i *PaymentIntent) { i.Amount = "-5" }, ReasonBelowMinimum},
		{"exactly minimum", func(i *PaymentIntent) { i.Amount = "0.000001" }, ""},
		{"exactly maximum", func(i *PaymentIntent) { i.Amount = "10000" }, ""},
		{"above maximum", func(i *PaymentIntent) { i.Amount = "10000.01" }, ReasonExceedsMaximum},
		{"unsupported currency", func(i *PaymentIntent) { i.Currency = "BTC" }, ReasonUnsupportedCurrency},
		{"currency case-sensitive", func(i *PaymentIntent) { i.Currency = "matic" }, ReasonUnsupportedCurrency},
		{"recipient too short", func(i *PaymentIntent) { i.To = "0x1234" }, ReasonBadRecipient},
		{"recipient not hex", func(i *PaymentIntent) { i.To = "0xZZ22222222222222222222222222222222222222" }, ReasonBadRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := validIntent()
			tt.mutate(&intent)
			res := v.Validate(intent)
			if tt.reason == "" {
				assert.True(t, res.Valid)
				assert.Empty(t, res.Reason)
			} else {
				assert.False(t, res.Valid)
				assert.Equal(t, tt.reason, res.Reason)
			}
		})
	}
}

func TestValidatorReportsEarliestFailure(t *testing.T) {
	v := NewValidator(rules.Default().Payment)

	// Malformed amount and bad recipient together: amount is checked first.
	intent := validIntent()
	intent.Amount = "abc"
	intent.To = "not-an-address"
	assert.Equal(t, ReasonInvalidAmountFormat, v.Validate(intent).Reason)
}

func TestValidatorParsesAmountExactly(t *testing.T) {
	v := NewValidator(rules.Default().Payment)

	intent := validIntent()
	intent.Amount = "99.999999"
	res := v.Validate(intent)
	require.True(t, res.Valid)
	assert.True(t, res.Amount.Equal(decimal.RequireFromString("99.999999")))
}
