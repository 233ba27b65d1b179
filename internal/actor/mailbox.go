package actor

import (
	"context"
	"fmt"
	"log/slog"

	dErrors "paygate/pkg/domain-errors"
)

func typeName(msg any) string {
	return fmt.Sprintf("%T", msg)
}

const defaultMailboxSize = 256

// Handler processes one message. Implementations are never invoked
// concurrently for the same actor.
type Handler interface {
	Handle(ctx context.Context, msg any)
}

// Actor couples a role with a mailbox and a handler.
type Actor struct {
	role    Role
	inbox   chan any
	handler Handler
	logger  *slog.Logger
}

func newActor(role Role, handler Handler, logger *slog.Logger) *Actor {
	return &Actor{
		role:    role,
		inbox:   make(chan any, defaultMailboxSize),
		handler: handler,
		logger:  logger,
	}
}

// Send enqueues a message without blocking. A full mailbox reports
// backpressure to the sender instead of stalling it.
func (a *Actor) Send(msg any) error {
	select {
	case a.inbox <- msg:
		return nil
	default:
		return dErrors.New(dErrors.CodeUnavailable, string(a.role)+" mailbox full")
	}
}

// run drains the mailbox until the context ends. A panic in the handler
// escapes to the supervisor, which decides whether to restart the actor.
func (a *Actor) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-a.inbox:
			a.handler.Handle(ctx, msg)
		}
	}
}
