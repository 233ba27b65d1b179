package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// supervisorDefaults bound how hard a crashing actor is retried before the
// whole runtime gives up.
const (
	defaultMaxRestarts    = 5
	defaultInitialBackoff = 100 * time.Millisecond
	defaultMaxBackoff     = 10 * time.Second
)

// Supervisor restarts a crashed actor with exponential backoff. Restarts are
// counted over the actor's lifetime; exceeding the budget stops the runtime,
// since an actor that keeps dying is a fault to surface, not to hide.
type Supervisor struct {
	maxRestarts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

func WithRestartBudget(n int) SupervisorOption {
	return func(s *Supervisor) {
		if n > 0 {
			s.maxRestarts = n
		}
	}
}

func WithBackoff(initial, max time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		if initial > 0 {
			s.initialBackoff = initial
		}
		if max > 0 {
			s.maxBackoff = max
		}
	}
}

func NewSupervisor(logger *slog.Logger, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		maxRestarts:    defaultMaxRestarts,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		logger:         logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Supervise runs the actor until the context ends, restarting it after a
// panic. Context cancellation is a clean stop, never a restart.
func (s *Supervisor) Supervise(ctx context.Context, a *Actor) error {
	backoff := s.initialBackoff
	restarts := 0

	for {
		err := s.runRecovered(ctx, a)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}

		restarts++
		if restarts > s.maxRestarts {
			return fmt.Errorf("%s actor exceeded restart budget of %d: %w", a.role, s.maxRestarts, err)
		}
		s.logger.ErrorContext(ctx, "actor crashed, restarting",
			"role", a.role, "restart", restarts, "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}

func (s *Supervisor) runRecovered(ctx context.Context, a *Actor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.run(ctx)
}
