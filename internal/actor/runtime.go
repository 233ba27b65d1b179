package actor

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Sender delivers a message to a role's mailbox. Handlers depend on this
// rather than on the Runtime so tests can capture outgoing messages.
type Sender interface {
	Send(to Role, msg any) error
}

// Runtime owns the three actors and supervises them as one unit.
type Runtime struct {
	actors     map[Role]*Actor
	supervisor *Supervisor
	logger     *slog.Logger
}

func NewRuntime(logger *slog.Logger, opts ...SupervisorOption) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		actors:     make(map[Role]*Actor),
		supervisor: NewSupervisor(logger, opts...),
		logger:     logger,
	}
}

// Register installs the handler for a role. Registering the same role twice
// is a programming error.
func (r *Runtime) Register(role Role, handler Handler) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	if _, exists := r.actors[role]; exists {
		return fmt.Errorf("%s actor already registered", role)
	}
	r.actors[role] = newActor(role, handler, r.logger)
	return nil
}

// Send routes a message to the role's mailbox.
func (r *Runtime) Send(to Role, msg any) error {
	a, ok := r.actors[to]
	if !ok {
		return fmt.Errorf("no %s actor registered", to)
	}
	return a.Send(msg)
}

// Run starts every registered actor under supervision and blocks until the
// context ends or an actor exhausts its restart budget.
func (r *Runtime) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, a := range r.actors {
		g.Go(func() error {
			return r.supervisor.Supervise(ctx, a)
		})
	}
	r.logger.InfoContext(ctx, "actor runtime started", "actors", len(r.actors))
	return g.Wait()
}
