package decision

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate/internal/payment"
	"paygate/pkg/domain"
	"paygate/pkg/platform/sentinel"
)

func sampleDecision(id domain.RequestID) payment.AuthorizationDecision {
	return payment.AuthorizationDecision{
		RequestID:     id,
		Allowed:       true,
		FailureStage:  payment.StageNone,
		DailyHeadroom: decimal.NewFromInt(1000),
		EvaluatedAt:   time.Now().UTC(),
	}
}

func TestMemoryDecisionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	d := sampleDecision("req-1")
	require.NoError(t, s.Save(ctx, d))

	got, err := s.Find(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestMemoryDecisionWriteOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	d := sampleDecision("req-1")
	require.NoError(t, s.Save(ctx, d))

	overwrite := d
	overwrite.Allowed = false
	err := s.Save(ctx, overwrite)
	require.ErrorIs(t, err, sentinel.ErrDuplicate)

	got, err := s.Find(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, got.Allowed, "original decision must survive")
}

func TestMemoryDecisionNotFound(t *testing.T) {
	s := NewMemory()
	_, err := s.Find(context.Background(), "missing")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}
