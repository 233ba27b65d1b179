//go:build integration

package decision_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"paygate/internal/payment"
	"paygate/internal/payment/store/decision"
	"paygate/pkg/platform/sentinel"
	"paygate/pkg/testutil/containers"
)

const decisionsDDL = `
CREATE TABLE IF NOT EXISTS payment_decisions (
    request_id       TEXT PRIMARY KEY,
    allowed          BOOLEAN NOT NULL,
    failure_stage    TEXT NOT NULL,
    reason           TEXT NOT NULL,
    required_actions TEXT[] NOT NULL DEFAULT '{}',
    daily_headroom   NUMERIC NOT NULL,
    evaluated_at     TIMESTAMPTZ NOT NULL,
    recorded_at      TIMESTAMPTZ NOT NULL
)`

type PostgresDecisionSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *decision.PostgresDecisionStore
}

func TestPostgresDecisionSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresDecisionSuite))
}

func (s *PostgresDecisionSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Exec(s.T(), decisionsDDL)
	s.store = decision.NewPostgres(s.pg.DB)
}

func (s *PostgresDecisionSuite) SetupTest() {
	s.pg.Exec(s.T(), "TRUNCATE payment_decisions")
}

func (s *PostgresDecisionSuite) TestRoundTrip() {
	ctx := context.Background()
	d := payment.AuthorizationDecision{
		RequestID:       "req-pg-1",
		Allowed:         false,
		FailureStage:    payment.StageCompliance,
		Reason:          "compliance requirements not met",
		RequiredActions: []string{payment.RequirementKYC},
		DailyHeadroom:   decimal.RequireFromString("42.5"),
		EvaluatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Save(ctx, d))

	got, err := s.store.Find(ctx, "req-pg-1")
	s.Require().NoError(err)
	s.Equal(d.RequestID, got.RequestID)
	s.Equal(d.FailureStage, got.FailureStage)
	s.Equal(d.Reason, got.Reason)
	s.Equal(d.RequiredActions, got.RequiredActions)
	s.True(got.DailyHeadroom.Equal(d.DailyHeadroom))
	s.True(got.EvaluatedAt.Equal(d.EvaluatedAt))
}

func (s *PostgresDecisionSuite) TestWriteOnce() {
	ctx := context.Background()
	d := payment.AuthorizationDecision{
		RequestID:     "req-pg-2",
		Allowed:       true,
		FailureStage:  payment.StageNone,
		DailyHeadroom: decimal.NewFromInt(1000),
		EvaluatedAt:   time.Now().UTC(),
	}
	s.Require().NoError(s.store.Save(ctx, d))

	d.Allowed = false
	s.Require().ErrorIs(s.store.Save(ctx, d), sentinel.ErrDuplicate)

	got, err := s.store.Find(ctx, "req-pg-2")
	s.Require().NoError(err)
	s.True(got.Allowed)
}

func (s *PostgresDecisionSuite) TestNotFound() {
	_, err := s.store.Find(context.Background(), "missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
