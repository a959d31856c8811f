package optim

import "math"

// adam implements the Adam (Adaptive Moment Estimation) update.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	theta = theta - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int       // Timestep for bias correction
	m     []float64 // First moment estimates
	v     []float64 // Second moment estimates
}

func newAdam(cfg Config, n int) *adam {
	return &adam{
		lr:    cfg.LearningRate,
		beta1: cfg.Beta1,
		beta2: cfg.Beta2,
		eps:   cfg.Epsilon,
		m:     make([]float64, n),
		v:     make([]float64, n),
	}
}

// Step performs a single Adam update.
func (a *adam) Step(theta, grad []float64) {
	a.t++

	biasCorrection1 := 1 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1 - math.Pow(a.beta2, float64(a.t))

	for i, g := range grad {
		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g

		mHat := a.m[i] / biasCorrection1
		vHat := a.v[i] / biasCorrection2

		theta[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
}

// LR returns the learning rate.
func (a *adam) LR() float64 {
	return a.lr
}

// Adam fits theta with bias-corrected first and second moment estimates of
// the full-dataset gradient.
//
// Uses: LearningRate, Iterations, Beta1, Beta2, Epsilon.
//
// Adam always spends the whole Iterations budget: Tolerance is ignored and
// Result.Converged is always false. Costs still holds one entry per step.
func Adam(X [][]float64, y []float64, cfg Config) (Result, error) {
	cfg, err := prepare(MethodAdam, X, y, cfg)
	if err != nil {
		return Result{}, err
	}
	return descend(MethodAdam, X, y, cfg, newAdam(cfg, len(X[0])), false), nil
}
