// Package dispatch runs CPU-heavy matching passes off the request path.
// Each submission gets its own worker goroutine; a semaphore bounds how
// many run at once, and every run carries a deadline so a hung computation
// cannot pin a request forever.
package dispatch

import (
	"context"
	"fmt"
	"time"
)

// Config holds the dispatcher limits.
type Config struct {
	// MaxConcurrent bounds the number of matching passes running at once.
	// Submissions beyond the bound wait for a slot or their context.
	MaxConcurrent int
	// Timeout is the wall-clock budget of one matching pass.
	Timeout time.Duration
}

// DefaultConfig returns the reference limits.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 4,
		Timeout:       30 * time.Second,
	}
}

// DispatchError reports why a dispatched run did not produce a result.
type DispatchError struct {
	Stage string
	Cause error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed at %s: %v", e.Stage, e.Cause)
}

func (e *DispatchError) Unwrap() error { return e.Cause }

// Dispatcher hands work to isolated workers and awaits their single reply.
type Dispatcher struct {
	cfg Config
	sem chan struct{}
}

// New builds a dispatcher. Non-positive limits fall back to the defaults.
func New(cfg Config) *Dispatcher {
	def := DefaultConfig()
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Dispatcher{cfg: cfg, sem: make(chan struct{}, cfg.MaxConcurrent)}
}

// Run executes fn on a dedicated worker goroutine and waits for its single
// reply, honoring both the caller's context and the dispatcher timeout.
// Worker panics come back as errors, never crash the process.
func Run[T any](ctx context.Context, d *Dispatcher, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return zero, &DispatchError{Stage: "queue wait", Cause: ctx.Err()}
	}
	defer func() { <-d.sem }()

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	type reply struct {
		value T
		err   error
	}
	// Buffered so a worker finishing after a timeout can still exit.
	replies := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				replies <- reply{err: fmt.Errorf("worker panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		replies <- reply{value: v, err: err}
	}()

	select {
	case r := <-replies:
		if r.err != nil {
			return zero, &DispatchError{Stage: "worker", Cause: r.err}
		}
		return r.value, nil
	case <-ctx.Done():
		return zero, &DispatchError{Stage: "await", Cause: ctx.Err()}
	}
}
