package optim

import "math"

// rmsProp scales each step by a running average of squared gradients.
//
//	s = beta * s + (1-beta) * gradient²
//	theta = theta - lr * gradient / (sqrt(s) + eps)
type rmsProp struct {
	lr   float64
	beta float64
	eps  float64
	s    []float64
}

func newRMSProp(cfg Config, n int) *rmsProp {
	return &rmsProp{
		lr:   cfg.LearningRate,
		beta: cfg.Beta,
		eps:  cfg.Epsilon,
		s:    make([]float64, n),
	}
}

// Step performs a single RMSProp update.
func (r *rmsProp) Step(theta, grad []float64) {
	for i, g := range grad {
		r.s[i] = r.beta*r.s[i] + (1-r.beta)*g*g
		theta[i] -= r.lr * g / (math.Sqrt(r.s[i]) + r.eps)
	}
}

// LR returns the learning rate.
func (r *rmsProp) LR() float64 {
	return r.lr
}

// RMSProp fits theta with per-coordinate steps normalised by the root mean
// square of recent gradients, stopping early under the same tolerance rule
// as BatchGradientDescent.
//
// Uses: LearningRate, Iterations, Tolerance, Beta, Epsilon.
func RMSProp(X [][]float64, y []float64, cfg Config) (Result, error) {
	cfg, err := prepare(MethodRMSProp, X, y, cfg)
	if err != nil {
		return Result{}, err
	}
	return descend(MethodRMSProp, X, y, cfg, newRMSProp(cfg, len(X[0])), true), nil
}
