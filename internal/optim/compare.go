package optim

import (
	"context"
	"fmt"

	"github.com/born-ml/descent/internal/parallel"
)

// Run pairs a method with the result it produced.
type Run struct {
	Method Method
	Result Result
}

// Compare fits the same data with several methods concurrently and returns
// the runs in the order the methods were given. With no methods, every
// registered method runs.
//
// Each run gets its own copy of cfg. A Source is not safe for concurrent use,
// so cfg.Source is ignored: run i shuffles with a source seeded from
// cfg.Seed+i (or a random one when cfg.Seed is negative).
//
// The first failing run cancels the runs not yet started and its error is
// returned.
func Compare(ctx context.Context, X [][]float64, y []float64, cfg Config, methods ...Method) ([]Run, error) {
	if len(methods) == 0 {
		methods = Methods()
	}
	if err := checkData(X, y); err != nil {
		return nil, err
	}

	runs := make([]Run, len(methods))
	err := parallel.Run(ctx, len(methods), func(_ context.Context, i int) error {
		c := cfg
		c.Source = nil
		if cfg.Seed >= 0 {
			c.Seed = cfg.Seed + int64(i)
		}

		res, err := Fit(methods[i], X, y, c)
		if err != nil {
			return fmt.Errorf("%s: %w", methods[i], err)
		}
		runs[i] = Run{Method: methods[i], Result: res}
		return nil
	}, parallel.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return runs, nil
}
