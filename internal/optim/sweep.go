package optim

// sweep runs the shuffle-then-partition loop shared by the stochastic and
// mini-batch solvers. Every outer step draws a fresh permutation, applies one
// update per contiguous chunk of it, then records the full-dataset cost once
// and consults the convergence monitor.
func sweep(method Method, X [][]float64, y []float64, cfg Config, budget, chunk int) Result {
	log := cfg.Logger
	m := len(X)
	chunk = min(chunk, m)
	theta := make([]float64, len(X[0]))
	grad := make([]float64, len(theta))
	rule := newSGD(cfg.LearningRate, 0, len(theta))
	src := cfg.source()
	perm := sequence(m)
	mon := newMonitor(cfg.Tolerance, budget)

	log.LogStart(method, m, len(theta), rule.LR(), budget)

	for pass := 0; pass < budget; pass++ {
		shuffle(perm, src)
		for start := 0; start < m; start += chunk {
			end := min(start+chunk, m)
			gradient(grad, X, y, theta, perm[start:end])
			rule.Step(theta, grad)
		}

		c := cost(X, y, theta)
		converged := mon.record(c)
		log.LogStep(method, pass, c)
		if converged {
			return finish(method, log, theta, mon.costs, pass+1, true)
		}
	}

	return finish(method, log, theta, mon.costs, budget, false)
}

// StochasticGradientDescent updates theta after every single sample, visiting
// the samples in a fresh random order each epoch.
//
// Uses: LearningRate, Epochs, Tolerance, Source (or Seed).
//
// The full-dataset cost is recorded once per epoch and the tolerance rule is
// checked per epoch, not per sample.
func StochasticGradientDescent(X [][]float64, y []float64, cfg Config) (Result, error) {
	cfg, err := prepare(MethodStochastic, X, y, cfg)
	if err != nil {
		return Result{}, err
	}
	return sweep(MethodStochastic, X, y, cfg, cfg.Epochs, 1), nil
}

// MiniBatchGradientDescent splits each shuffled pass into ceil(m/BatchSize)
// contiguous batches and updates theta once per batch with the gradient
// averaged over that batch. The last batch of a pass may be shorter.
//
// Uses: LearningRate, Iterations, Tolerance, BatchSize, Source (or Seed).
//
// A BatchSize of at least m gives one full batch per pass, which matches
// BatchGradientDescent up to the shuffle order.
func MiniBatchGradientDescent(X [][]float64, y []float64, cfg Config) (Result, error) {
	cfg, err := prepare(MethodMiniBatch, X, y, cfg)
	if err != nil {
		return Result{}, err
	}
	return sweep(MethodMiniBatch, X, y, cfg, cfg.Iterations, cfg.BatchSize), nil
}
