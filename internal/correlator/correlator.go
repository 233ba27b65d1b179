// Package correlator matches asynchronous responses back to the request that
// caused them. Every in-flight request registers under its request ID exactly
// once; a response either resolves its waiter or, if nothing is waiting, is
// dropped and logged as an anomaly.
package correlator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"paygate/pkg/domain"
	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/platform/sentinel"
)

// Correlator tracks in-flight requests of one response type.
type Correlator[T any] struct {
	mu      sync.Mutex
	pending map[domain.RequestID]chan T
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Correlator.
type Option[T any] func(*Correlator[T])

func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(c *Correlator[T]) {
		if l != nil {
			c.logger = l
		}
	}
}

// New constructs a Correlator whose waiters give up after timeout.
func New[T any](timeout time.Duration, opts ...Option[T]) *Correlator[T] {
	c := &Correlator[T]{
		pending: make(map[domain.RequestID]chan T),
		timeout: timeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Register claims the slot for a request ID. A second registration while the
// first is still in flight returns ErrDuplicate; the ID becomes reusable only
// after its waiter resolves, times out, or is cancelled.
func (c *Correlator[T]) Register(id domain.RequestID) (*Waiter[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inflight := c.pending[id]; inflight {
		return nil, sentinel.ErrDuplicate
	}
	ch := make(chan T, 1)
	c.pending[id] = ch
	return &Waiter[T]{id: id, ch: ch, c: c}, nil
}

// Resolve delivers a response to the registered waiter. An unmatched response
// is dropped; true reports whether a waiter received it.
func (c *Correlator[T]) Resolve(ctx context.Context, id domain.RequestID, value T) bool {
	c.mu.Lock()
	ch, inflight := c.pending[id]
	if inflight {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !inflight {
		c.logger.WarnContext(ctx, "dropping response with no matching request", "request_id", id)
		return false
	}
	ch <- value
	return true
}

// Cancel frees the slot without delivering anything. Safe to call after the
// waiter has already resolved.
func (c *Correlator[T]) Cancel(id domain.RequestID) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Pending reports the number of in-flight requests.
func (c *Correlator[T]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Waiter is one registered request's receiving side.
type Waiter[T any] struct {
	id domain.RequestID
	ch chan T
	c  *Correlator[T]
}

// Await blocks until the response arrives, the correlator timeout elapses, or
// the context ends. Timeout and cancellation free the slot, so a later
// response for this ID is treated as unmatched.
func (w *Waiter[T]) Await(ctx context.Context) (T, error) {
	timer := time.NewTimer(w.c.timeout)
	defer timer.Stop()

	var zero T
	select {
	case v := <-w.ch:
		return v, nil
	case <-timer.C:
		w.c.Cancel(w.id)
		// A resolve may have raced the timeout; prefer the delivered value.
		select {
		case v := <-w.ch:
			return v, nil
		default:
		}
		return zero, dErrors.Wrap(sentinel.ErrExpired, dErrors.CodeTimeout, "request timed out awaiting response")
	case <-ctx.Done():
		w.c.Cancel(w.id)
		return zero, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "request cancelled awaiting response")
	}
}
