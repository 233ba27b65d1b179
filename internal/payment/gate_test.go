package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate/internal/rules"
)

func TestGateSingleLimit(t *testing.T) {
	g := NewGate(rules.Default().Limits, newMemoryVolumes())

	res, err := g.Check(context.Background(), testSender, decimal.NewFromInt(150))
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, ReasonSingleLimitExceeded, res.Reason)

	res, err = g.Check(context.Background(), testSender, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, res.Allowed, "exactly the single limit is allowed")
}

func TestGateDailyLimit(t *testing.T) {
	ctx := context.Background()
	g := NewGate(rules.Default().Limits, newMemoryVolumes())

	// Spend 950 across the day, then a 100 payment must fail while 50 fits.
	for i := 0; i < 19; i++ {
		require.NoError(t, g.Commit(ctx, testSender, decimal.NewFromInt(50)))
	}

	res, err := g.Check(ctx, testSender, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, ReasonDailyLimitExceeded, res.Reason)
	assert.True(t, res.Headroom.Equal(decimal.NewFromInt(50)), "headroom reported even on rejection, got %s", res.Headroom)

	res, err = g.Check(ctx, testSender, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.True(t, res.Allowed, "payment that exactly fills the day is allowed")
}

func TestGateCheckDoesNotConsumeHeadroom(t *testing.T) {
	ctx := context.Background()
	g := NewGate(rules.Default().Limits, newMemoryVolumes())

	for i := 0; i < 5; i++ {
		res, err := g.Check(ctx, testSender, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.True(t, res.Headroom.Equal(decimal.NewFromInt(1000)), "repeated checks must not record volume")
	}
}

func TestGateLimitsArePerAddress(t *testing.T) {
	ctx := context.Background()
	g := NewGate(rules.Default().Limits, newMemoryVolumes())

	require.NoError(t, g.Commit(ctx, testSender, decimal.NewFromInt(1000)))

	res, err := g.Check(ctx, testRecipient, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
