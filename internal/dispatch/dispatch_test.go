package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_DeliversResult(t *testing.T) {
	d := New(DefaultConfig())

	got, err := Run(context.Background(), d, func(context.Context) (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestRun_PropagatesWorkerError(t *testing.T) {
	d := New(DefaultConfig())
	boom := errors.New("boom")

	_, err := Run(context.Background(), d, func(context.Context) (int, error) {
		return 0, boom
	})

	var dispErr *DispatchError
	require.ErrorAs(t, err, &dispErr)
	assert.Equal(t, "worker", dispErr.Stage)
	assert.ErrorIs(t, err, boom)
}

func TestRun_RecoversWorkerPanic(t *testing.T) {
	d := New(DefaultConfig())

	_, err := Run(context.Background(), d, func(context.Context) (int, error) {
		panic("scoring blew up")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker panic")
}

func TestRun_TimesOut(t *testing.T) {
	d := New(Config{MaxConcurrent: 1, Timeout: 20 * time.Millisecond})

	_, err := Run(context.Background(), d, func(ctx context.Context) (int, error) {
		select {
		case <-time.After(time.Second):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_CallerCancellation(t *testing.T) {
	d := New(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, d, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run did not observe cancellation")
	}
}

func TestRun_QueueWaitRespectsContext(t *testing.T) {
	d := New(Config{MaxConcurrent: 1, Timeout: time.Second})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = Run(context.Background(), d, func(context.Context) (int, error) {
			close(started)
			<-release
			return 0, nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Run(ctx, d, func(context.Context) (int, error) { return 0, nil })
	close(release)

	var dispErr *DispatchError
	require.ErrorAs(t, err, &dispErr)
	assert.Equal(t, "queue wait", dispErr.Stage)
}
