package decision

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"paygate/internal/payment"
	"paygate/pkg/domain"
	"paygate/pkg/platform/sentinel"
)

// Clock abstracts time.Now for testability.
type Clock func() time.Time

// PostgresDecisionStore persists decisions in PostgreSQL. This is the
// implementation for deployments that need the audit trail to survive
// restarts.
//
// Schema:
//
//	CREATE TABLE payment_decisions (
//	    request_id       TEXT PRIMARY KEY,
//	    allowed          BOOLEAN NOT NULL,
//	    failure_stage    TEXT NOT NULL,
//	    reason           TEXT NOT NULL,
//	    required_actions TEXT[] NOT NULL DEFAULT '{}',
//	    daily_headroom   NUMERIC NOT NULL,
//	    evaluated_at     TIMESTAMPTZ NOT NULL,
//	    recorded_at      TIMESTAMPTZ NOT NULL
//	);
type PostgresDecisionStore struct {
	db    *sql.DB
	clock Clock
}

// PostgresOption configures a PostgresDecisionStore.
type PostgresOption func(*PostgresDecisionStore)

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock Clock) PostgresOption {
	return func(s *PostgresDecisionStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresDecisionStore {
	s := &PostgresDecisionStore{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *PostgresDecisionStore) Save(ctx context.Context, d payment.AuthorizationDecision) error {
	query := `
		INSERT INTO payment_decisions
			(request_id, allowed, failure_stage, reason, required_actions, daily_headroom, evaluated_at, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (request_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		string(d.RequestID), d.Allowed, string(d.FailureStage), d.Reason,
		pq.Array(d.RequiredActions), d.DailyHeadroom.String(), d.EvaluatedAt, s.clock())
	if err != nil {
		return fmt.Errorf("save decision: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save decision: %w", err)
	}
	if n == 0 {
		return sentinel.ErrDuplicate
	}
	return nil
}

func (s *PostgresDecisionStore) Find(ctx context.Context, id domain.RequestID) (payment.AuthorizationDecision, error) {
	query := `
		SELECT allowed, failure_stage, reason, required_actions, daily_headroom, evaluated_at
		FROM payment_decisions WHERE request_id = $1
	`
	var (
		d        payment.AuthorizationDecision
		stage    string
		actions  pq.StringArray
		headroom string
	)
	err := s.db.QueryRowContext(ctx, query, string(id)).
		Scan(&d.Allowed, &stage, &d.Reason, &actions, &headroom, &d.EvaluatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return payment.AuthorizationDecision{}, sentinel.ErrNotFound
		}
		return payment.AuthorizationDecision{}, fmt.Errorf("find decision: %w", err)
	}

	d.RequestID = id
	d.FailureStage = payment.Stage(stage)
	d.RequiredActions = actions
	d.DailyHeadroom, err = decimal.NewFromString(headroom)
	if err != nil {
		return payment.AuthorizationDecision{}, fmt.Errorf("find decision: malformed headroom: %w", err)
	}
	return d, nil
}
