// Package parallel provides bounded fan-out over an index range with
// deterministic error propagation. It backs the per-observable loops of the
// adjoint sweep, where each index owns disjoint state and branches may fail
// independently.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls fan-out behavior.
type Config struct {
	Enabled    bool // Whether concurrent execution is enabled.
	NumWorkers int  // Upper bound on concurrent branches.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{Enabled: n > 1, NumWorkers: n}
}

// Disabled returns a config that forces sequential execution. Batch workers
// use it so the total concurrency stays bounded by the device count.
func Disabled() Config {
	return Config{Enabled: false, NumWorkers: 1}
}

// For executes f(ctx, i) for every i in [0, n). When a branch fails the
// remaining branches are cancelled through the context, every launched
// branch is joined, and the failure with the lowest index is returned.
// Selecting by index keeps the surfaced error independent of goroutine
// scheduling.
func For(ctx context.Context, n int, cfg Config, f func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	if !cfg.Enabled || n == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.NumWorkers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				// Cancelled before starting; not this branch's failure.
				return err
			}
			errs[i] = f(gctx, i)
			return errs[i]
		})
	}
	waitErr := g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return waitErr
}
