package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalLockerSerializesKey(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	lease, err := l.Obtain(ctx, "cogs", time.Minute)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = l.Obtain(waitCtx, "cogs", time.Minute)
	assert.True(t, errors.Is(err, ErrNotObtained))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	other, err := l.Obtain(ctx, "sales", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lease.Release(ctx))
	require.NoError(t, lease.Release(ctx))

	again, err := l.Obtain(ctx, "cogs", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestLocalLockerWaitsForRelease(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	lease, err := l.Obtain(ctx, "cogs", time.Minute)
	require.NoError(t, err)

	obtained := make(chan struct{})
	go func() {
		next, err := l.Obtain(ctx, "cogs", time.Minute)
		if err == nil {
			_ = next.Release(ctx)
		}
		close(obtained)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, lease.Release(ctx))

	select {
	case <-obtained:
	case <-time.After(time.Second):
		t.Fatal("waiter never obtained the lock")
	}
}

func TestNewFallsBackToLocal(t *testing.T) {
	l := New(nil, zap.NewNop())
	_, ok := l.(*LocalLocker)
	assert.True(t, ok)
}

func TestLocalLockerRejectsEmptyKey(t *testing.T) {
	_, err := NewLocal().Obtain(context.Background(), "", time.Second)
	assert.Error(t, err)
}

type scriptedLease struct {
	mu        sync.Mutex
	refreshes int
	errs      []error
}

func (l *scriptedLease) Refresh(context.Context, time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshes++
	if len(l.errs) == 0 {
		return nil
	}
	err := l.errs[0]
	l.errs = l.errs[1:]
	return err
}

func (l *scriptedLease) Release(context.Context) error { return nil }

func (l *scriptedLease) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refreshes
}

func TestKeepAliveRefreshesUntilStopped(t *testing.T) {
	lease := &scriptedLease{}
	ctx, stop := KeepAlive(context.Background(), lease, 30*time.Millisecond, zap.NewNop())

	require.Eventually(t, func() bool { return lease.count() >= 3 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, ctx.Err())

	stop()
	stop()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
}

func TestKeepAliveCancelsWhenLeaseLost(t *testing.T) {
	lease := &scriptedLease{errs: []error{ErrLeaseLost}}
	ctx, stop := KeepAlive(context.Background(), lease, 30*time.Millisecond, zap.NewNop())
	defer stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after the lease was lost")
	}
	assert.ErrorIs(t, context.Cause(ctx), ErrLeaseLost)
}

func TestKeepAliveToleratesOneBackendError(t *testing.T) {
	backend := errors.New("connection reset")
	lease := &scriptedLease{errs: []error{backend, nil, backend, backend}}
	ctx, stop := KeepAlive(context.Background(), lease, 30*time.Millisecond, zap.NewNop())
	defer stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after repeated refresh failures")
	}
	assert.GreaterOrEqual(t, lease.count(), 4)
	assert.ErrorIs(t, context.Cause(ctx), ErrLeaseLost)
	assert.ErrorIs(t, context.Cause(ctx), backend)
}

func TestLocalLeaseRefreshIsNoop(t *testing.T) {
	lease, err := NewLocal().Obtain(context.Background(), "cogs", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, lease.Refresh(context.Background(), time.Minute))
	require.NoError(t, lease.Release(context.Background()))
}
