// Package rules holds the versioned rule tables every pipeline stage reads.
// A Config is constructed once at process start and passed explicitly into
// each component; nothing mutates it at runtime, which keeps per-test
// overrides trivial.
package rules

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"paygate/pkg/domain"
)

// Config is the immutable rule set for payment authorization.
type Config struct {
	Version string

	Payment      PaymentRules
	Security     SecurityRules
	Compliance   ComplianceRules
	Limits       LimitRules
	Verification VerificationRules

	// SessionTimeout bounds how long a verification session may stay pending
	// before it expires.
	SessionTimeout time.Duration
}

// PaymentRules drive field and amount validation.
type PaymentRules struct {
	MinAmount           decimal.Decimal
	MaxAmount           decimal.Decimal
	SupportedCurrencies []string
}

// Supports reports whether the currency code is on the allow-list.
func (p PaymentRules) Supports(currency string) bool {
	for _, c := range p.SupportedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

// SecurityRules drive the blacklist and fraud heuristics.
type SecurityRules struct {
	Blacklist []domain.Address

	// A single transfer above FraudAmountThreshold in FraudCurrency is
	// treated as suspicious.
	FraudAmountThreshold decimal.Decimal
	FraudCurrency        string
}

// Blacklisted reports address membership on the deny-list, case-insensitively.
func (s SecurityRules) Blacklisted(addr domain.Address) bool {
	for _, b := range s.Blacklist {
		if b.Equal(addr) {
			return true
		}
	}
	return false
}

// ComplianceRules hold the threshold per compliance requirement, in ascending
// order of amount: AML < KYC < reporting.
type ComplianceRules struct {
	AMLCheckAmount     decimal.Decimal
	KYCRequiredAmount  decimal.Decimal
	ReportingThreshold decimal.Decimal
}

// LimitRules bound single-transaction size and rolling daily volume.
type LimitRules struct {
	MaxSingle decimal.Decimal
	MaxDaily  decimal.Decimal
}

// VerificationRules map a payment amount to identity requirements. The
// wallet-side proof requirement and the compliance thresholds are separate
// configurable tables.
type VerificationRules struct {
	// RequiredProofAmount is the amount above which any verified proof is
	// required before a payment may proceed.
	RequiredProofAmount decimal.Decimal

	// EnhancedLevelAmount is the amount above which the required level is
	// enhanced rather than basic.
	EnhancedLevelAmount decimal.Decimal
}

// RequiredLevel returns the verification level a payment of the given amount
// demands.
func (v VerificationRules) RequiredLevel(amount decimal.Decimal) domain.VerificationLevel {
	if amount.GreaterThan(v.EnhancedLevelAmount) {
		return domain.LevelEnhanced
	}
	return domain.LevelBasic
}

// Default returns the production rule set.
func Default() Config {
	return Config{
		Version: "2024.1",
		Payment: PaymentRules{
			MinAmount:           decimal.RequireFromString("0.000001"),
			MaxAmount:           decimal.NewFromInt(10000),
			SupportedCurrencies: []string{"MATIC", "USDC", "USDT"},
		},
		Security: SecurityRules{
			Blacklist: []domain.Address{
				"0x0000000000000000000000000000000000000000",
			},
			FraudAmountThreshold: decimal.NewFromInt(1000),
			FraudCurrency:        "MATIC",
		},
		Compliance: ComplianceRules{
			AMLCheckAmount:     decimal.NewFromInt(50),
			KYCRequiredAmount:  decimal.NewFromInt(100),
			ReportingThreshold: decimal.NewFromInt(1000),
		},
		Limits: LimitRules{
			MaxSingle: decimal.NewFromInt(100),
			MaxDaily:  decimal.NewFromInt(1000),
		},
		Verification: VerificationRules{
			RequiredProofAmount: decimal.NewFromInt(50),
			EnhancedLevelAmount: decimal.NewFromInt(100),
		},
		SessionTimeout: 15 * time.Minute,
	}
}

// Validate checks internal consistency of the rule tables.
func (c Config) Validate() error {
	if c.Payment.MinAmount.IsNegative() {
		return fmt.Errorf("payment.min_amount must be non-negative")
	}
	if c.Payment.MaxAmount.LessThanOrEqual(c.Payment.MinAmount) {
		return fmt.Errorf("payment.max_amount must exceed min_amount")
	}
	if len(c.Payment.SupportedCurrencies) == 0 {
		return fmt.Errorf("payment.supported_currencies must not be empty")
	}
	if c.Compliance.AMLCheckAmount.GreaterThanOrEqual(c.Compliance.KYCRequiredAmount) {
		return fmt.Errorf("compliance thresholds must ascend: aml < kyc")
	}
	if c.Compliance.KYCRequiredAmount.GreaterThanOrEqual(c.Compliance.ReportingThreshold) {
		return fmt.Errorf("compliance thresholds must ascend: kyc < reporting")
	}
	if c.Limits.MaxSingle.LessThanOrEqual(decimal.Zero) || c.Limits.MaxDaily.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("limits must be positive")
	}
	if c.Limits.MaxSingle.GreaterThan(c.Limits.MaxDaily) {
		return fmt.Errorf("limits.max_single must not exceed max_daily")
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session_timeout must be positive")
	}
	return nil
}
