package optim

import (
	"fmt"
	"math"
)

// Default hyperparameters applied to zero-valued Config fields.
const (
	DefaultTolerance = 1e-6
	DefaultBeta1     = 0.9
	DefaultBeta2     = 0.999
	DefaultBeta      = 0.9
	DefaultEpsilon   = 1e-8
)

// Config holds the options shared by every solver. Each solver reads and
// validates only the fields it uses.
//
// Zero values select defaults where a default exists:
//   - Tolerance: 1e-6 (NaN disables early stopping)
//   - Beta1, Beta2: 0.9, 0.999 (Adam)
//   - Beta: 0.9 (RMSProp)
//   - Epsilon: 1e-8 (Adam, RMSProp)
//
// Momentum has no default: 0 is a valid momentum and reduces the momentum
// solver to plain batch gradient descent.
type Config struct {
	LearningRate float64 // Step size multiplier, > 0 (all solvers)
	Iterations   int     // Outer-loop budget (batch, mini-batch, momentum, Adam, RMSProp)
	Epochs       int     // Outer-loop budget (stochastic)
	Tolerance    float64 // Early-stop threshold on |cost[t] - cost[t-1]| (all but Adam)
	Momentum     float64 // Velocity decay in [0, 1) (momentum)
	Beta1        float64 // First moment decay in [0, 1) (Adam)
	Beta2        float64 // Second moment decay in [0, 1) (Adam)
	Beta         float64 // Squared-gradient decay in [0, 1) (RMSProp)
	Epsilon      float64 // Numerical floor added to the denominator (Adam, RMSProp)
	BatchSize    int     // Rows per gradient estimate, > 0 (mini-batch)

	// Source drives the per-epoch shuffles of the stochastic and mini-batch
	// solvers. When nil, a source seeded with Seed is created per call.
	Source Source

	// Seed seeds the default Source. -1 = random.
	Seed int64

	// Logger receives progress records. nil = no logging.
	Logger *Logger
}

// withDefaults returns a copy of c with zero-valued optional fields replaced
// by their defaults.
func (c Config) withDefaults() Config {
	if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.Beta1 == 0 {
		c.Beta1 = DefaultBeta1
	}
	if c.Beta2 == 0 {
		c.Beta2 = DefaultBeta2
	}
	if c.Beta == 0 {
		c.Beta = DefaultBeta
	}
	if c.Epsilon == 0 {
		c.Epsilon = DefaultEpsilon
	}
	if c.Logger == nil {
		c.Logger = NoopLogger()
	}
	return c
}

// validate checks the fields method reads. c must already carry defaults.
func (c Config) validate(method Method) error {
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 1) {
		return invalid("learning rate must be a finite value > 0, got %g", c.LearningRate)
	}

	switch method {
	case MethodStochastic:
		if c.Epochs <= 0 {
			return invalid("epochs must be > 0, got %d", c.Epochs)
		}
	default:
		if c.Iterations <= 0 {
			return invalid("iterations must be > 0, got %d", c.Iterations)
		}
	}

	if method != MethodAdam && c.Tolerance < 0 {
		return invalid("tolerance must be >= 0, got %g", c.Tolerance)
	}

	switch method {
	case MethodMiniBatch:
		if c.BatchSize <= 0 {
			return invalid("batch size must be > 0, got %d", c.BatchSize)
		}
	case MethodMomentum:
		if !unit(c.Momentum) {
			return invalid("momentum must be in [0, 1), got %g", c.Momentum)
		}
	case MethodAdam:
		if !unit(c.Beta1) {
			return invalid("beta1 must be in [0, 1), got %g", c.Beta1)
		}
		if !unit(c.Beta2) {
			return invalid("beta2 must be in [0, 1), got %g", c.Beta2)
		}
		if !(c.Epsilon > 0) {
			return invalid("epsilon must be > 0, got %g", c.Epsilon)
		}
	case MethodRMSProp:
		if !unit(c.Beta) {
			return invalid("beta must be in [0, 1), got %g", c.Beta)
		}
		if !(c.Epsilon > 0) {
			return invalid("epsilon must be > 0, got %g", c.Epsilon)
		}
	}
	return nil
}

// source returns the configured Source or a fresh one seeded from Seed.
func (c Config) source() Source {
	if c.Source != nil {
		return c.Source
	}
	return NewSource(c.Seed)
}

// checkData validates the shape of a design matrix and its targets.
func checkData(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ErrEmptyDataset
	}
	if len(y) != len(X) {
		return fmt.Errorf("%w: %d targets for %d rows", ErrDimensionMismatch, len(y), len(X))
	}
	n := len(X[0])
	if n == 0 {
		return fmt.Errorf("%w: rows have no columns", ErrDimensionMismatch)
	}
	for i, row := range X {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimensionMismatch, i, len(row), n)
		}
	}
	return nil
}

// prepare validates inputs once, before any iteration, and returns the
// effective configuration.
func prepare(method Method, X [][]float64, y []float64, cfg Config) (Config, error) {
	if err := checkData(X, y); err != nil {
		return Config{}, err
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(method); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func unit(v float64) bool {
	return v >= 0 && v < 1
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameter}, args...)...)
}
