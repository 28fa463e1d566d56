package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestRunnerStartOnlyStopped(t *testing.T) {
	f := newFake(map[string]Status{
		"a": StatusStopped,
		"b": StatusRunning,
		"c": StatusStartPending,
		"d": StatusPaused,
	})
	r := NewRunner(f, 2, nil)

	require.NoError(t, r.Start(context.Background(), []string{"a", "b", "c", "d"}))
	sort.Strings(f.started)
	assert.Equal(t, []string{"a", "d"}, f.started)
}

func TestRunnerStopOnlyRunning(t *testing.T) {
	f := newFake(map[string]Status{
		"a": StatusStopped,
		"b": StatusRunning,
		"c": StatusStartPending,
	})
	r := NewRunner(f, 0, nil)

	require.NoError(t, r.Stop(context.Background(), []string{"a", "b", "c"}))
	sort.Strings(f.stopped)
	assert.Equal(t, []string{"b", "c"}, f.stopped)
}

func TestRunnerCollectsEveryFailure(t *testing.T) {
	f := newFake(map[string]Status{
		"a": StatusStopped,
		"b": StatusStopped,
		"c": StatusStopped,
	})
	f.failOn["a"] = ErrAccessDenied
	f.failOn["c"] = ErrAccessDenied
	r := NewRunner(f, 1, nil)

	err := r.Start(context.Background(), []string{"a", "b", "c", "missing"})
	require.Error(t, err)
	errs := multierr.Errors(err)
	assert.Len(t, errs, 3)
	assert.Equal(t, []string{"b"}, f.started)

	var opErr *OpError
	require.True(t, errors.As(errs[0], &opErr))
	assert.True(t, errors.Is(err, ErrAccessDenied))
	assert.True(t, errors.Is(err, ErrServiceNotFound))
}

func TestRunnerCancelledContext(t *testing.T) {
	f := newFake(map[string]Status{"a": StatusStopped})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRunner(f, 1, nil).Start(ctx, []string{"a"})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, f.started)
}

func TestWaitForState(t *testing.T) {
	f := newFake(map[string]Status{"a": StatusStartPending})
	go func() {
		time.Sleep(20 * time.Millisecond)
		f.mu.Lock()
		f.status["a"] = StatusRunning
		f.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, WaitForState(ctx, f, "a", StatusRunning, 5*time.Millisecond))
}

func TestWaitForStateTimeout(t *testing.T) {
	f := newFake(map[string]Status{"a": StatusStopped})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := WaitForState(ctx, f, "a", StatusRunning, 5*time.Millisecond)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCachedControllerInfo(t *testing.T) {
	f := newFake(map[string]Status{"Spooler": StatusRunning})
	c := NewCachedController(f)

	inf, err := c.Info("Spooler")
	require.NoError(t, err)
	assert.Equal(t, "Display Spooler", inf.DisplayName)
	_, _ = c.Info("Spooler")
	assert.Equal(t, 1, f.infoHits)

	c.Refresh()
	_, _ = c.Info("Spooler")
	assert.Equal(t, 2, f.infoHits)

	_, err = c.Info("missing")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
