// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"context"
	"log/slog"

	"github.com/born-ml/descent/internal/optim"
)

// Config holds the options shared by every solver.
type Config = optim.Config

// Result is the outcome of one solver call.
type Result = optim.Result

// Run pairs a method with the result it produced.
type Run = optim.Run

// Method names a solver.
type Method = optim.Method

// Func is the uniform solver signature.
type Func = optim.Func

// Source is the random strategy behind the per-epoch shuffles.
type Source = optim.Source

// Logger wraps slog.Logger with solver-specific helpers.
type Logger = optim.Logger

// Registered solvers.
const (
	MethodBatch      = optim.MethodBatch
	MethodStochastic = optim.MethodStochastic
	MethodMiniBatch  = optim.MethodMiniBatch
	MethodMomentum   = optim.MethodMomentum
	MethodAdam       = optim.MethodAdam
	MethodRMSProp    = optim.MethodRMSProp
)

// Default hyperparameters.
const (
	DefaultTolerance = optim.DefaultTolerance
	DefaultBeta1     = optim.DefaultBeta1
	DefaultBeta2     = optim.DefaultBeta2
	DefaultBeta      = optim.DefaultBeta
	DefaultEpsilon   = optim.DefaultEpsilon
)

// Errors

var (
	ErrDimensionMismatch = optim.ErrDimensionMismatch
	ErrEmptyDataset      = optim.ErrEmptyDataset
	ErrInvalidParameter  = optim.ErrInvalidParameter
	ErrUnknownMethod     = optim.ErrUnknownMethod
)

// Building blocks

// Predict returns X·theta, one prediction per row.
func Predict(X [][]float64, theta []float64) ([]float64, error) {
	return optim.Predict(X, theta)
}

// Cost returns the mean-squared-error cost 1/(2m)·Σ(X·theta - y)².
func Cost(X [][]float64, y, theta []float64) (float64, error) {
	return optim.Cost(X, y, theta)
}

// Gradient returns the gradient of Cost with respect to theta.
func Gradient(X [][]float64, y, theta []float64) ([]float64, error) {
	return optim.Gradient(X, y, theta)
}

// AddBias returns a copy of X with a constant 1 prepended to every row.
func AddBias(X [][]float64) [][]float64 {
	return optim.AddBias(X)
}

// Shuffle returns a uniformly random permutation of indices.
func Shuffle(indices []int, src Source) []int {
	return optim.Shuffle(indices, src)
}

// Permutation returns a random permutation of 0..m-1.
func Permutation(m int, src Source) []int {
	return optim.Permutation(m, src)
}

// NewSource returns a Source seeded with seed (-1 = random).
func NewSource(seed int64) Source {
	return optim.NewSource(seed)
}

// Solvers

// BatchGradientDescent fits theta with the full-dataset gradient.
func BatchGradientDescent(X [][]float64, y []float64, cfg Config) (Result, error) {
	return optim.BatchGradientDescent(X, y, cfg)
}

// StochasticGradientDescent fits theta with one update per sample.
func StochasticGradientDescent(X [][]float64, y []float64, cfg Config) (Result, error) {
	return optim.StochasticGradientDescent(X, y, cfg)
}

// MiniBatchGradientDescent fits theta with one update per batch of BatchSize rows.
func MiniBatchGradientDescent(X [][]float64, y []float64, cfg Config) (Result, error) {
	return optim.MiniBatchGradientDescent(X, y, cfg)
}

// MomentumGradientDescent fits theta with a velocity-accumulating update.
func MomentumGradientDescent(X [][]float64, y []float64, cfg Config) (Result, error) {
	return optim.MomentumGradientDescent(X, y, cfg)
}

// Adam fits theta with bias-corrected moment estimates.
//
// Example:
//
//	res, err := optim.Adam(X, y, optim.Config{
//	    LearningRate: 0.1,
//	    Iterations:   500,
//	})
func Adam(X [][]float64, y []float64, cfg Config) (Result, error) {
	return optim.Adam(X, y, cfg)
}

// RMSProp fits theta with steps normalised by recent gradient magnitudes.
func RMSProp(X [][]float64, y []float64, cfg Config) (Result, error) {
	return optim.RMSProp(X, y, cfg)
}

// Methods returns every registered method.
func Methods() []Method {
	return optim.Methods()
}

// ParseMethod resolves a method name.
func ParseMethod(name string) (Method, error) {
	return optim.ParseMethod(name)
}

// Fit runs the solver registered for method.
func Fit(method Method, X [][]float64, y []float64, cfg Config) (Result, error) {
	return optim.Fit(method, X, y, cfg)
}

// Compare fits the same data with several methods concurrently.
//
// Example:
//
//	runs, err := optim.Compare(ctx, X, y, optim.Config{
//	    LearningRate: 0.01,
//	    Iterations:   1000,
//	    Epochs:       100,
//	    BatchSize:    16,
//	    Momentum:     0.9,
//	})
func Compare(ctx context.Context, X [][]float64, y []float64, cfg Config, methods ...Method) ([]Run, error) {
	return optim.Compare(ctx, X, y, cfg, methods...)
}

// Logging

// NewLogger creates a Logger with the given handler.
func NewLogger(handler slog.Handler) *Logger {
	return optim.NewLogger(handler)
}

// NewTextLogger creates a Logger writing text records to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return optim.NewTextLogger(level)
}

// NewJSONLogger creates a Logger writing JSON records to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return optim.NewJSONLogger(level)
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return optim.NoopLogger()
}
