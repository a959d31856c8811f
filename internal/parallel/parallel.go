// Package parallel runs independent tasks with a bounded number of workers.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Maximum number of tasks running at once.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
	}
}

// Run executes f(ctx, i) for i in [0, n).
//
// With parallelism enabled at most cfg.NumWorkers calls run at once; otherwise
// the calls run sequentially in index order. The first error cancels the
// context handed to the remaining calls, stops scheduling new ones and is
// returned. If ctx is cancelled before all calls were scheduled, ctx.Err() is
// returned.
func Run(ctx context.Context, n int, f func(ctx context.Context, i int) error, cfg Config) error {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2 {
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

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.NumWorkers)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			return f(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
