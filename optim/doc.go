// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient-based solvers for linear least squares.
//
// # Overview
//
// This package contains:
//   - Predict, Cost, Gradient: linear predictor, mean-squared-error cost and its gradient
//   - BatchGradientDescent, StochasticGradientDescent, MiniBatchGradientDescent
//   - MomentumGradientDescent, Adam, RMSProp
//   - Fit and Compare to run solvers by name, one at a time or concurrently
//
// The caller assembles the design matrix; nothing here scales features,
// regularizes or loads data. Use AddBias to prepend an intercept column.
//
// # Basic Usage
//
//	import "github.com/born-ml/descent/optim"
//
//	func main() {
//	    X := optim.AddBias([][]float64{{50}, {80}, {100}, {120}, {150}})
//	    y := []float64{100, 160, 200, 240, 300}
//
//	    res, err := optim.BatchGradientDescent(X, y, optim.Config{
//	        LearningRate: 0.0001,
//	        Iterations:   1000,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Theta, res.Final(), res.Iterations)
//	}
//
// # Solvers
//
// Every solver takes (X, y, Config) and returns a Result. Batch, Momentum
// and RMSProp record the cost of the current theta at every iteration and
// stop as soon as two consecutive costs differ by less than Tolerance.
// Stochastic and Mini-Batch shuffle the samples at every epoch or pass and
// apply the same rule once per epoch or pass. Adam always spends its whole
// Iterations budget.
//
// Stochastic (one update per sample):
//
//	res, err := optim.StochasticGradientDescent(X, y, optim.Config{
//	    LearningRate: 0.05,
//	    Epochs:       100,
//	    Seed:         42,
//	})
//
// Adam (Adaptive Moment Estimation):
//
//	res, err := optim.Adam(X, y, optim.Config{
//	    LearningRate: 0.1,
//	    Iterations:   500,
//	    Beta1:        0.9,
//	    Beta2:        0.999,
//	})
//
// # Reproducibility
//
// The shuffles of the stochastic solvers draw from Config.Source, or from a
// source seeded with Config.Seed when Source is nil. Inject a Source to make
// the sample order deterministic in tests.
//
// # Errors
//
// Inputs are validated once, before the first iteration. Failures wrap
// ErrDimensionMismatch, ErrEmptyDataset or ErrInvalidParameter; use
// errors.Is to classify them. Divergence is not an error: it shows up as
// non-finite costs, reported by Result.Diverged.
package optim
