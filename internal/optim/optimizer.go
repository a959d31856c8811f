// Package optim implements gradient-based solvers for linear least squares.
//
// This package provides:
//   - Linear predictor, mean-squared-error cost and its analytic gradient
//   - Batch, Stochastic and Mini-Batch Gradient Descent
//   - Momentum Gradient Descent, Adam and RMSProp
//   - A shared convergence monitor (absolute cost delta below tolerance)
//
// Every solver has the same shape: a design matrix, a target vector and a
// Config in; a Result holding the fitted theta and the cost history out.
// theta starts at zero on every call and all optimizer state is local to
// the call, so independent calls may run concurrently on shared inputs.
//
// Example usage:
//
//	X := optim.AddBias([][]float64{{50}, {80}, {100}, {120}, {150}})
//	y := []float64{100, 160, 200, 240, 300}
//
//	res, err := optim.BatchGradientDescent(X, y, optim.Config{
//	    LearningRate: 0.0001,
//	    Iterations:   1000,
//	})
package optim

import "math"

// updateRule applies one parameter update from a gradient.
//
// Implementations own their accumulator state (velocity, moment estimates)
// and are created fresh for every solver call.
type updateRule interface {
	// Step updates theta in place from grad.
	Step(theta, grad []float64)

	// LR returns the learning rate.
	LR() float64
}

// Result is the outcome of one solver call.
type Result struct {
	Theta      []float64 // Fitted parameters
	Costs      []float64 // One cost per outer step (iteration, pass or epoch)
	Iterations int       // Outer steps performed
	Converged  bool      // The tolerance rule stopped the run before the budget ran out
}

// Final returns the last recorded cost, or NaN if none was recorded.
func (r Result) Final() float64 {
	if len(r.Costs) == 0 {
		return math.NaN()
	}
	return r.Costs[len(r.Costs)-1]
}

// Diverged reports whether any recorded cost is NaN or infinite, which is how
// an excessive learning rate shows up.
func (r Result) Diverged() bool {
	for _, c := range r.Costs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return true
		}
	}
	return false
}

// monitor is the convergence monitor shared by all solvers: it owns the cost
// history and trips once two consecutive costs differ by less than tolerance.
type monitor struct {
	tolerance float64
	costs     []float64
}

func newMonitor(tolerance float64, budget int) *monitor {
	return &monitor{
		tolerance: tolerance,
		costs:     make([]float64, 0, min(budget, 1024)),
	}
}

// record appends cost and reports whether the run has converged.
func (m *monitor) record(cost float64) bool {
	m.costs = append(m.costs, cost)
	n := len(m.costs)
	return n > 1 && math.Abs(m.costs[n-1]-m.costs[n-2]) < m.tolerance
}

// descend runs the full-batch loop shared by batch, momentum, RMSProp and
// Adam. At every step the cost of the current theta is recorded first; when
// earlyStop is set and the monitor trips, the run ends without updating.
func descend(method Method, X [][]float64, y []float64, cfg Config, rule updateRule, earlyStop bool) Result {
	log := cfg.Logger
	theta := make([]float64, len(X[0]))
	grad := make([]float64, len(theta))
	rows := sequence(len(X))
	mon := newMonitor(cfg.Tolerance, cfg.Iterations)

	log.LogStart(method, len(X), len(theta), rule.LR(), cfg.Iterations)

	for t := 0; t < cfg.Iterations; t++ {
		c := cost(X, y, theta)
		converged := mon.record(c)
		log.LogStep(method, t, c)
		if earlyStop && converged {
			return finish(method, log, theta, mon.costs, t+1, true)
		}
		gradient(grad, X, y, theta, rows)
		rule.Step(theta, grad)
	}

	return finish(method, log, theta, mon.costs, cfg.Iterations, false)
}

func finish(method Method, log *Logger, theta, costs []float64, steps int, converged bool) Result {
	res := Result{
		Theta:      theta,
		Costs:      costs,
		Iterations: steps,
		Converged:  converged,
	}
	log.LogFinished(method, res)
	return res
}
