package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate/internal/rules"
	"paygate/pkg/domain"
	dErrors "paygate/pkg/domain-errors"
)

type stubSanctions struct {
	sanctioned bool
	reason     string
	err        error
	calls      int
}

func (s *stubSanctions) Sanctioned(context.Context, domain.Address, domain.Address) (bool, string, error) {
	s.calls++
	return s.sanctioned, s.reason, s.err
}

func TestScreenerAllClear(t *testing.T) {
	s := NewScreener(rules.Default().Security, &stubSanctions{})

	res, err := s.Screen(context.Background(), validIntent(), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, res.Passed)
	require.Len(t, res.Attempts, 3)
	for _, a := range res.Attempts {
		assert.True(t, a.Passed, a.Name)
	}
}

func TestScreenerBlacklistStopsEarly(t *testing.T) {
	sanctions := &stubSanctions{}
	s := NewScreener(rules.Default().Security, sanctions)

	intent := validIntent()
	intent.To = "0x0000000000000000000000000000000000000000"
	res, err := s.Screen(context.Background(), intent, decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.False(t, res.Passed)
	assert.Equal(t, "address is blacklisted", res.Reason)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, CheckBlacklist, res.Attempts[0].Name)
	assert.Zero(t, sanctions.calls, "later checks must not run after a failure")
}

func TestScreenerSanctionedCounterparty(t *testing.T) {
	s := NewScreener(rules.Default().Security, &stubSanctions{sanctioned: true, reason: "counterparty on sanctions list"})

	res, err := s.Screen(context.Background(), validIntent(), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.False(t, res.Passed)
	require.Len(t, res.Attempts, 2)
	assert.True(t, res.Attempts[0].Passed)
	assert.False(t, res.Attempts[1].Passed)
}

func TestScreenerFraudHeuristic(t *testing.T) {
	s := NewScreener(rules.Default().Security, &stubSanctions{})

	t.Run("large native transfer flagged", func(t *testing.T) {
		intent := validIntent()
		intent.Amount = "1500"
		res, err := s.Screen(context.Background(), intent, decimal.NewFromInt(1500))
		require.NoError(t, err)
		assert.False(t, res.Passed)
		assert.Equal(t, CheckFraud, res.Attempts[len(res.Attempts)-1].Name)
	})

	t.Run("same amount in stablecoin passes", func(t *testing.T) {
		intent := validIntent()
		intent.Amount = "1500"
		intent.Currency = "USDC"
		res, err := s.Screen(context.Background(), intent, decimal.NewFromInt(1500))
		require.NoError(t, err)
		assert.True(t, res.Passed)
	})

	t.Run("threshold is exclusive", func(t *testing.T) {
		res, err := s.Screen(context.Background(), validIntent(), decimal.NewFromInt(1000))
		require.NoError(t, err)
		assert.True(t, res.Passed)
	})
}

func TestScreenerCollaboratorFailureIsNotAVerdict(t *testing.T) {
	s := NewScreener(rules.Default().Security, &stubSanctions{err: errors.New("connection refused")})

	_, err := s.Screen(context.Background(), validIntent(), decimal.NewFromInt(10))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnavailable, dErrors.CodeOf(err))
}
