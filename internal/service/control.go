package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/powerplanchanger/ppc/internal/constants"
	"github.com/powerplanchanger/ppc/internal/logging"
)

// Runner applies start/stop actions to several services at once.
type Runner struct {
	ctrl   Controller
	limit  int
	logger *logging.Logger
}

// NewRunner creates a runner that touches at most limit services at a time.
func NewRunner(ctrl Controller, limit int, logger *logging.Logger) *Runner {
	if limit <= 0 {
		limit = constants.DefaultServiceConcurrency
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{ctrl: ctrl, limit: limit, logger: logger}
}

// StartIfStopped starts name unless it is already running or starting.
func StartIfStopped(c Controller, name string) error {
	st, err := c.Query(name)
	if err != nil {
		return &OpError{Op: "query", Service: name, Err: err}
	}
	if IsRunning(st) {
		return nil
	}
	if err := c.Start(name); err != nil {
		return &OpError{Op: "start", Service: name, Err: err}
	}
	return nil
}

// StopIfRunning stops name if it is running or starting.
func StopIfRunning(c Controller, name string) error {
	st, err := c.Query(name)
	if err != nil {
		return &OpError{Op: "query", Service: name, Err: err}
	}
	if !IsRunning(st) {
		return nil
	}
	if err := c.Stop(name); err != nil {
		return &OpError{Op: "stop", Service: name, Err: err}
	}
	return nil
}

// Start starts every named service that is not running. Every service is
// attempted; failures are returned together.
func (r *Runner) Start(ctx context.Context, names []string) error {
	return r.each(ctx, "start", names, StartIfStopped)
}

// Stop stops every named service that is running.
func (r *Runner) Stop(ctx context.Context, names []string) error {
	return r.each(ctx, "stop", names, StopIfRunning)
}

func (r *Runner) each(ctx context.Context, op string, names []string, fn func(Controller, string) error) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs error
	)
	g.SetLimit(r.limit)

	for _, name := range names {
		name := name
		g.Go(func() error {
			var err error
			if cerr := ctx.Err(); cerr != nil {
				err = &OpError{Op: op, Service: name, Err: cerr}
			} else {
				err = fn(r.ctrl, name)
			}
			if err != nil {
				r.logger.Warn().Err(err).Str("service", name).Msgf("%s failed", op)
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return nil
			}
			r.logger.Debug().Str("service", name).Msgf("%s ok", op)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// WaitForState polls name until it reaches want or ctx is done.
func WaitForState(ctx context.Context, c Controller, name string, want Status, poll time.Duration) error {
	if poll <= 0 {
		poll = constants.ServicePollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		st, err := c.Query(name)
		if err != nil {
			return &OpError{Op: "query", Service: name, Err: err}
		}
		if st == want {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("service %s is %s, wanted %s: %w", name, st, want, ctx.Err())
		case <-ticker.C:
		}
	}
}
