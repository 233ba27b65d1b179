package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"paygate/internal/rules"
	"paygate/pkg/domain"
	dErrors "paygate/pkg/domain-errors"
)

// VolumeStore tracks per-address spend over a rolling 24 hour window.
// Implementations live in store/volume.
type VolumeStore interface {
	// Volume returns the address's spend inside the current window.
	Volume(ctx context.Context, addr domain.Address) (decimal.Decimal, error)
	// Add records a completed payment and returns the new window total.
	Add(ctx context.Context, addr domain.Address, amount decimal.Decimal) (decimal.Decimal, error)
}

const (
	ReasonSingleLimitExceeded = "amount exceeds single transaction limit"
	ReasonDailyLimitExceeded  = "daily transaction limit exceeded"
)

// Gate enforces the single-transaction and rolling daily limits. Check is a
// pure read; volume is committed separately, after the payment actually
// dispatches, so a rejected or failed payment never consumes headroom.
type Gate struct {
	limits  rules.LimitRules
	volumes VolumeStore
}

func NewGate(limits rules.LimitRules, volumes VolumeStore) *Gate {
	return &Gate{limits: limits, volumes: volumes}
}

// Check evaluates both limits without recording anything. The returned
// headroom is the daily capacity remaining before this payment, floored at
// zero.
func (g *Gate) Check(ctx context.Context, addr domain.Address, amount decimal.Decimal) (GateResult, error) {
	spent, err := g.volumes.Volume(ctx, addr)
	if err != nil {
		return GateResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "volume store unavailable")
	}

	headroom := g.limits.MaxDaily.Sub(spent)
	if headroom.IsNegative() {
		headroom = decimal.Zero
	}

	res := GateResult{Allowed: true, Headroom: headroom}
	if amount.GreaterThan(g.limits.MaxSingle) {
		res.Allowed = false
		res.Reason = ReasonSingleLimitExceeded
		return res, nil
	}
	if spent.Add(amount).GreaterThan(g.limits.MaxDaily) {
		res.Allowed = false
		res.Reason = ReasonDailyLimitExceeded
		return res, nil
	}
	return res, nil
}

// Commit records a dispatched payment against the sender's daily window.
func (g *Gate) Commit(ctx context.Context, addr domain.Address, amount decimal.Decimal) error {
	if _, err := g.volumes.Add(ctx, addr, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "volume store unavailable")
	}
	return nil
}
