package hwp

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSessionClosed is returned for operations submitted after Close.
var ErrSessionClosed = errors.New("hwp: session closed")

// Session owns a Handler for its lifetime. A single goroutine executes every
// submitted operation, so the automation application is never touched from
// two goroutines at once regardless of how many callers share the session.
type Session struct {
	ops       chan task
	done      chan struct{}
	closeOnce sync.Once
}

type task struct {
	fn   func(Handler) error
	errc chan error
}

// Open probes the handler and starts the owning goroutine. A probe failure
// is the caller's setup failure: nothing has been executed yet.
func Open(ctx context.Context, h Handler) (*Session, error) {
	if err := h.Ping(ctx); err != nil {
		return nil, fmt.Errorf("acquire automation handle: %w", err)
	}

	s := &Session{
		ops:  make(chan task),
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		for t := range s.ops {
			t.errc <- t.fn(h)
		}
	}()
	return s, nil
}

// Do submits fn to the owning goroutine and waits for it to finish. fn gets
// exclusive use of the handler while it runs.
func (s *Session) Do(ctx context.Context, fn func(Handler) error) error {
	t := task{fn: fn, errc: make(chan error, 1)}
	select {
	case s.ops <- t:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-t.errc:
		return err
	case <-ctx.Done():
		// The operation keeps the handle until it returns; the result is
		// discarded.
		return ctx.Err()
	}
}

// Close releases the session. In-flight work finishes first; later Do calls
// fail with ErrSessionClosed.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.ops)
	})
	<-s.done
}
