package optim

import "gonum.org/v1/gonum/floats"

// sgd is the plain gradient step with optional momentum.
//
// Update rule without momentum:
//
//	theta = theta - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	theta = theta - lr * velocity
//
// Momentum accumulates an exponentially weighted direction that damps
// oscillation across ill-conditioned dimensions.
type sgd struct {
	lr       float64
	momentum float64
	velocity []float64
}

func newSGD(lr, momentum float64, n int) *sgd {
	s := &sgd{lr: lr, momentum: momentum}
	if momentum != 0 {
		s.velocity = make([]float64, n)
	}
	return s
}

// Step applies one update. With zero momentum velocity equals the raw
// gradient, so the plain update is taken directly.
func (s *sgd) Step(theta, grad []float64) {
	if s.momentum == 0 {
		floats.AddScaled(theta, -s.lr, grad)
		return
	}
	floats.Scale(s.momentum, s.velocity)
	floats.Add(s.velocity, grad)
	floats.AddScaled(theta, -s.lr, s.velocity)
}

// LR returns the learning rate.
func (s *sgd) LR() float64 {
	return s.lr
}

// BatchGradientDescent fits theta using the full-dataset gradient at every
// step.
//
// Uses: LearningRate, Iterations, Tolerance.
//
// At step t the cost of the current theta is recorded; if t > 0 and it
// differs from the previous cost by less than Tolerance, the run stops with
// Iterations = t+1. Otherwise theta -= LearningRate * gradient.
func BatchGradientDescent(X [][]float64, y []float64, cfg Config) (Result, error) {
	cfg, err := prepare(MethodBatch, X, y, cfg)
	if err != nil {
		return Result{}, err
	}
	return descend(MethodBatch, X, y, cfg, newSGD(cfg.LearningRate, 0, len(X[0])), true), nil
}

// MomentumGradientDescent is BatchGradientDescent with a velocity vector.
//
// Uses: LearningRate, Iterations, Tolerance, Momentum.
//
//	velocity = Momentum * velocity + gradient
//	theta    = theta - LearningRate * velocity
//
// A Momentum of 0 reproduces BatchGradientDescent exactly.
func MomentumGradientDescent(X [][]float64, y []float64, cfg Config) (Result, error) {
	cfg, err := prepare(MethodMomentum, X, y, cfg)
	if err != nil {
		return Result{}, err
	}
	return descend(MethodMomentum, X, y, cfg, newSGD(cfg.LearningRate, cfg.Momentum, len(X[0])), true), nil
}
