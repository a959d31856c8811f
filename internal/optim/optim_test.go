package optim_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/descent/internal/optim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// housing returns the price = 2*size dataset with a bias column.
func housing() ([][]float64, []float64) {
	X := [][]float64{{1, 50}, {1, 80}, {1, 100}, {1, 120}, {1, 150}}
	y := []float64{100, 160, 200, 240, 300}
	return X, y
}

// line returns 20 noiseless samples of y = 3 + 2x with x in [0, 1.9].
func line() ([][]float64, []float64) {
	X := make([][]float64, 20)
	y := make([]float64, 20)
	for i := range X {
		x := float64(i) / 10
		X[i] = []float64{1, x}
		y[i] = 3 + 2*x
	}
	return X, y
}

// identitySource makes every Fisher–Yates swap a no-op.
type identitySource struct{}

func (identitySource) Intn(n int) int { return n - 1 }

// countingSource counts the draws made by the shuffles.
type countingSource struct {
	rng   *rand.Rand
	calls int
}

func (c *countingSource) Intn(n int) int {
	c.calls++
	return c.rng.Intn(n)
}

// firstBelow returns the first step whose cost is below threshold, or
// len(costs) if none is.
func firstBelow(costs []float64, threshold float64) int {
	for i, c := range costs {
		if c < threshold {
			return i
		}
	}
	return len(costs)
}

// assertToleranceContract checks that a run stopped exactly when the cost
// delta first fell below tol, or spent its whole budget otherwise.
func assertToleranceContract(t *testing.T, res optim.Result, budget int, tol float64) {
	t.Helper()

	require.Len(t, res.Costs, res.Iterations)
	for i := 1; i < len(res.Costs)-1; i++ {
		assert.GreaterOrEqual(t, math.Abs(res.Costs[i]-res.Costs[i-1]), tol,
			"run should have stopped at step %d", i)
	}

	if res.Converged {
		n := len(res.Costs)
		require.Greater(t, n, 1)
		assert.Less(t, math.Abs(res.Costs[n-1]-res.Costs[n-2]), tol)
		assert.LessOrEqual(t, res.Iterations, budget)
	} else {
		assert.Equal(t, budget, res.Iterations)
	}
}

func TestBatchGradientDescent_Housing(t *testing.T) {
	X, y := housing()

	res, err := optim.BatchGradientDescent(X, y, optim.Config{
		LearningRate: 0.0001,
		Iterations:   1000,
	})
	require.NoError(t, err)

	require.Len(t, res.Theta, 2)
	assert.InDelta(t, 0, res.Theta[0], 0.05)
	assert.InDelta(t, 2, res.Theta[1], 0.001)
	assert.Less(t, res.Final(), 1e-3)
	assert.True(t, res.Converged)
	assertToleranceContract(t, res, 1000, optim.DefaultTolerance)
}

func TestBatchGradientDescent_CostNonIncreasing(t *testing.T) {
	for name, data := range map[string]func() ([][]float64, []float64){
		"housing": housing,
		"line":    line,
	} {
		t.Run(name, func(t *testing.T) {
			X, y := data()
			lr := 0.0001
			if name == "line" {
				lr = 0.1
			}

			res, err := optim.BatchGradientDescent(X, y, optim.Config{
				LearningRate: lr,
				Iterations:   2000,
			})
			require.NoError(t, err)

			for i := 1; i < len(res.Costs); i++ {
				assert.LessOrEqual(t, res.Costs[i], res.Costs[i-1]+1e-12, "step %d", i)
			}
			assert.Less(t, res.Final(), res.Costs[0]*1e-3)
		})
	}
}

func TestBatchGradientDescent_BudgetExhausted(t *testing.T) {
	X, y := housing()

	res, err := optim.BatchGradientDescent(X, y, optim.Config{
		LearningRate: 0.0001,
		Iterations:   50,
		Tolerance:    math.NaN(), // never converge
	})
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Equal(t, 50, res.Iterations)
	assert.Len(t, res.Costs, 50)
}

func TestBatchGradientDescent_SingleIteration(t *testing.T) {
	X, y := housing()

	res, err := optim.BatchGradientDescent(X, y, optim.Config{
		LearningRate: 0.0001,
		Iterations:   1,
	})
	require.NoError(t, err)

	// Initial cost of theta = 0 is mean(y²)/2.
	require.Len(t, res.Costs, 1)
	assert.InDelta(t, 22320, res.Costs[0], 1e-9)
	assert.Equal(t, 1, res.Iterations)

	grad, err := optim.Gradient(X, y, []float64{0, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.0001 * grad[0], -0.0001 * grad[1]}, res.Theta, 1e-12)
}

func TestBatchGradientDescent_Diverges(t *testing.T) {
	X, y := housing()

	res, err := optim.BatchGradientDescent(X, y, optim.Config{
		LearningRate: 1,
		Iterations:   100,
	})
	require.NoError(t, err, "divergence is not an error")

	assert.True(t, res.Diverged())
	assert.False(t, res.Converged)
	assert.Equal(t, 100, res.Iterations)
}

func TestMomentumGradientDescent_ZeroMomentumMatchesBatch(t *testing.T) {
	for name, data := range map[string]func() ([][]float64, []float64){
		"housing": housing,
		"line":    line,
	} {
		t.Run(name, func(t *testing.T) {
			X, y := data()
			cfg := optim.Config{
				LearningRate: 0.0001,
				Iterations:   500,
				Momentum:     0,
			}

			batch, err := optim.BatchGradientDescent(X, y, cfg)
			require.NoError(t, err)
			momentum, err := optim.MomentumGradientDescent(X, y, cfg)
			require.NoError(t, err)

			assert.Equal(t, batch, momentum)
		})
	}
}

func TestMomentumGradientDescent_Converges(t *testing.T) {
	X, y := line()

	res, err := optim.MomentumGradientDescent(X, y, optim.Config{
		LearningRate: 0.05,
		Iterations:   3000,
		Momentum:     0.9,
	})
	require.NoError(t, err)

	assert.InDelta(t, 3, res.Theta[0], 0.02)
	assert.InDelta(t, 2, res.Theta[1], 0.02)
	assert.True(t, res.Converged)
	assertToleranceContract(t, res, 3000, optim.DefaultTolerance)
}

func TestMomentumGradientDescent_Velocity(t *testing.T) {
	// One feature, one sample: cost = (theta - 1)² / 2, gradient = theta - 1.
	X := [][]float64{{1}}
	y := []float64{1}

	res, err := optim.MomentumGradientDescent(X, y, optim.Config{
		LearningRate: 0.1,
		Iterations:   2,
		Momentum:     0.9,
		Tolerance:    math.NaN(),
	})
	require.NoError(t, err)

	// v1 = -1, theta1 = 0.1
	// v2 = 0.9*(-1) + (0.1-1) = -1.8, theta2 = 0.1 + 0.18 = 0.28
	assert.InDelta(t, 0.28, res.Theta[0], 1e-12)
}

func TestMiniBatchGradientDescent_FullBatchMatchesBatch(t *testing.T) {
	X, y := housing()
	const iterations = 20

	batch, err := optim.BatchGradientDescent(X, y, optim.Config{
		LearningRate: 0.0001,
		Iterations:   iterations,
		Tolerance:    math.NaN(),
	})
	require.NoError(t, err)

	for _, size := range []int{len(X), len(X) + 3} {
		mini, err := optim.MiniBatchGradientDescent(X, y, optim.Config{
			LearningRate: 0.0001,
			Iterations:   iterations,
			Tolerance:    math.NaN(),
			BatchSize:    size,
			Source:       identitySource{},
		})
		require.NoError(t, err)

		// Same updates; batch records the cost before each update, mini-batch after.
		assert.Equal(t, batch.Theta, mini.Theta)
		assert.Equal(t, batch.Costs[1:], mini.Costs[:iterations-1])
		assert.Equal(t, iterations, mini.Iterations)
	}
}

func TestMiniBatchGradientDescent_Converges(t *testing.T) {
	X, y := line()

	for _, size := range []int{4, 7} {
		res, err := optim.MiniBatchGradientDescent(X, y, optim.Config{
			LearningRate: 0.1,
			Iterations:   2000,
			BatchSize:    size,
			Seed:         1,
		})
		require.NoError(t, err)

		assert.InDelta(t, 3, res.Theta[0], 0.05, "batch size %d", size)
		assert.InDelta(t, 2, res.Theta[1], 0.05, "batch size %d", size)
		assertToleranceContract(t, res, 2000, optim.DefaultTolerance)
	}
}

func TestMiniBatchGradientDescent_ShortLastBatch(t *testing.T) {
	X, y := line()
	const lr = 0.1

	res, err := optim.MiniBatchGradientDescent(X, y, optim.Config{
		LearningRate: lr,
		Iterations:   1,
		BatchSize:    7,
		Source:       identitySource{},
	})
	require.NoError(t, err)

	// Batches [0,7), [7,14), [14,20), each averaged over its own length.
	theta := make([]float64, 2)
	for _, b := range [][2]int{{0, 7}, {7, 14}, {14, 20}} {
		g, err := optim.Gradient(X[b[0]:b[1]], y[b[0]:b[1]], theta)
		require.NoError(t, err)
		floats.AddScaled(theta, -lr, g)
	}
	assert.Equal(t, theta, res.Theta)

	want, err := optim.Cost(X, y, theta)
	require.NoError(t, err)
	assert.Equal(t, []float64{want}, res.Costs)
}

func TestMiniBatchGradientDescent_ShufflesEveryPass(t *testing.T) {
	X, y := line()
	src := &countingSource{rng: rand.New(rand.NewSource(3))}

	res, err := optim.MiniBatchGradientDescent(X, y, optim.Config{
		LearningRate: 0.1,
		Iterations:   7,
		BatchSize:    6,
		Tolerance:    math.NaN(),
		Source:       src,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, res.Iterations)
	assert.Len(t, res.Costs, 7)
	assert.Equal(t, 7*(len(X)-1), src.calls)
}

func TestStochasticGradientDescent_Converges(t *testing.T) {
	X, y := line()

	res, err := optim.StochasticGradientDescent(X, y, optim.Config{
		LearningRate: 0.05,
		Epochs:       500,
		Seed:         42,
	})
	require.NoError(t, err)

	assert.InDelta(t, 3, res.Theta[0], 0.05)
	assert.InDelta(t, 2, res.Theta[1], 0.05)
	assert.True(t, res.Converged)
	assertToleranceContract(t, res, 500, optim.DefaultTolerance)
}

func TestStochasticGradientDescent_ShufflesEveryEpoch(t *testing.T) {
	X, y := line()
	src := &countingSource{rng: rand.New(rand.NewSource(5))}

	res, err := optim.StochasticGradientDescent(X, y, optim.Config{
		LearningRate: 0.01,
		Epochs:       5,
		Tolerance:    math.NaN(),
		Source:       src,
	})
	require.NoError(t, err)

	// One cost per epoch, one shuffle per epoch.
	assert.Len(t, res.Costs, 5)
	assert.Equal(t, 5*(len(X)-1), src.calls)
}

func TestStochasticGradientDescent_Reproducible(t *testing.T) {
	X, y := line()
	cfg := optim.Config{
		LearningRate: 0.05,
		Epochs:       50,
		Seed:         7,
	}

	a, err := optim.StochasticGradientDescent(X, y, cfg)
	require.NoError(t, err)
	b, err := optim.StochasticGradientDescent(X, y, cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	cfg.Source = rand.New(rand.NewSource(7))
	c, err := optim.StochasticGradientDescent(X, y, cfg)
	require.NoError(t, err)
	assert.Equal(t, a, c, "Seed and an equally seeded Source shuffle identically")
}

func TestStochasticGradientDescent_SingleSampleUpdate(t *testing.T) {
	// A single row makes every epoch exactly one per-sample update.
	X := [][]float64{{1, 2}}
	y := []float64{4}

	res, err := optim.StochasticGradientDescent(X, y, optim.Config{
		LearningRate: 0.1,
		Epochs:       1,
	})
	require.NoError(t, err)

	// gradient = (0 - 4) * [1, 2]
	assert.InDeltaSlice(t, []float64{0.4, 0.8}, res.Theta, 1e-12)
	require.Len(t, res.Costs, 1)
}

func TestAdam_Housing(t *testing.T) {
	X, y := housing()

	res, err := optim.Adam(X, y, optim.Config{
		LearningRate: 2,
		Iterations:   1000,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0, res.Theta[0], 1e-3)
	assert.InDelta(t, 2, res.Theta[1], 1e-3)
	assert.Less(t, res.Final(), 1e-8)
}

func TestAdam_ReachesThresholdBeforeBatch(t *testing.T) {
	X, y := housing()
	const threshold = 1e-5

	adam, err := optim.Adam(X, y, optim.Config{
		LearningRate: 2,
		Iterations:   1000,
	})
	require.NoError(t, err)

	batch, err := optim.BatchGradientDescent(X, y, optim.Config{
		LearningRate: 0.0001,
		Iterations:   1000,
		Tolerance:    math.NaN(),
	})
	require.NoError(t, err)

	adamSteps := firstBelow(adam.Costs, threshold)
	batchSteps := firstBelow(batch.Costs, threshold)

	assert.Less(t, adamSteps, len(adam.Costs), "adam should reach the threshold")
	assert.Less(t, adamSteps, batchSteps)
}

func TestAdam_IgnoresTolerance(t *testing.T) {
	X, y := line()

	res, err := optim.Adam(X, y, optim.Config{
		LearningRate: 0.05,
		Iterations:   100,
		Tolerance:    1e6,
	})
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Equal(t, 100, res.Iterations)
	assert.Len(t, res.Costs, 100)
}

func TestAdam_FirstStep(t *testing.T) {
	// After bias correction the first step has magnitude lr regardless of
	// the gradient's scale.
	X := [][]float64{{1}}
	y := []float64{1000}

	res, err := optim.Adam(X, y, optim.Config{
		LearningRate: 0.1,
		Iterations:   1,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.1, res.Theta[0], 1e-9)
}

func TestRMSProp_FirstStep(t *testing.T) {
	X := [][]float64{{1}}
	y := []float64{1}

	res, err := optim.RMSProp(X, y, optim.Config{
		LearningRate: 0.01,
		Iterations:   1,
	})
	require.NoError(t, err)

	// s = 0.1 * 1², theta = 0.01 * 1 / (sqrt(0.1) + 1e-8)
	assert.InDelta(t, 0.01/(math.Sqrt(0.1)+1e-8), res.Theta[0], 1e-12)
}

func TestRMSProp_Converges(t *testing.T) {
	X, y := line()

	res, err := optim.RMSProp(X, y, optim.Config{
		LearningRate: 0.01,
		Iterations:   3000,
	})
	require.NoError(t, err)

	assert.InDelta(t, 3, res.Theta[0], 0.02)
	assert.InDelta(t, 2, res.Theta[1], 0.02)
	assert.True(t, res.Converged)
	assertToleranceContract(t, res, 3000, optim.DefaultTolerance)
}

func TestSolvers_ThetaStartsAtZero(t *testing.T) {
	X, y := line()
	cfg := optim.Config{
		LearningRate: 0.01,
		Iterations:   1,
		Epochs:       1,
		BatchSize:    4,
	}

	// With theta = 0 the first recorded cost is mean(y²)/2 for every
	// solver that records before updating.
	want, err := optim.Cost(X, y, []float64{0, 0})
	require.NoError(t, err)

	for _, m := range []optim.Method{optim.MethodBatch, optim.MethodMomentum, optim.MethodAdam, optim.MethodRMSProp} {
		res, err := optim.Fit(m, X, y, cfg)
		require.NoError(t, err, m)
		assert.Equal(t, want, res.Costs[0], m)
	}
}

func TestSolvers_InputsUntouched(t *testing.T) {
	X, y := line()
	X0, y0 := line()

	for _, m := range optim.Methods() {
		_, err := optim.Fit(m, X, y, optim.Config{
			LearningRate: 0.01,
			Iterations:   10,
			Epochs:       10,
			BatchSize:    3,
		})
		require.NoError(t, err, m)
	}

	assert.Equal(t, X0, X)
	assert.Equal(t, y0, y)
}

func TestSolvers_Validation(t *testing.T) {
	X, y := line()
	valid := optim.Config{
		LearningRate: 0.01,
		Iterations:   10,
		Epochs:       10,
		BatchSize:    4,
		Momentum:     0.5,
	}

	tests := []struct {
		name    string
		methods []optim.Method
		X       [][]float64
		y       []float64
		mutate  func(*optim.Config)
		want    error
	}{
		{name: "empty dataset", X: [][]float64{}, y: []float64{}, want: optim.ErrEmptyDataset},
		{name: "nil dataset", want: optim.ErrEmptyDataset},
		{name: "target length", X: X, y: y[:5], want: optim.ErrDimensionMismatch},
		{name: "ragged rows", X: [][]float64{{1, 2}, {1}}, y: []float64{1, 2}, want: optim.ErrDimensionMismatch},
		{name: "zero-width rows", X: [][]float64{{}, {}}, y: []float64{1, 2}, want: optim.ErrDimensionMismatch},
		{name: "zero learning rate", mutate: func(c *optim.Config) { c.LearningRate = 0 }, want: optim.ErrInvalidParameter},
		{name: "negative learning rate", mutate: func(c *optim.Config) { c.LearningRate = -1 }, want: optim.ErrInvalidParameter},
		{name: "NaN learning rate", mutate: func(c *optim.Config) { c.LearningRate = math.NaN() }, want: optim.ErrInvalidParameter},
		{name: "infinite learning rate", mutate: func(c *optim.Config) { c.LearningRate = math.Inf(1) }, want: optim.ErrInvalidParameter},
		{
			name:    "zero iterations",
			methods: []optim.Method{optim.MethodBatch, optim.MethodMiniBatch, optim.MethodMomentum, optim.MethodAdam, optim.MethodRMSProp},
			mutate:  func(c *optim.Config) { c.Iterations = 0 },
			want:    optim.ErrInvalidParameter,
		},
		{
			name:    "zero epochs",
			methods: []optim.Method{optim.MethodStochastic},
			mutate:  func(c *optim.Config) { c.Epochs = 0 },
			want:    optim.ErrInvalidParameter,
		},
		{
			name:    "negative tolerance",
			methods: []optim.Method{optim.MethodBatch, optim.MethodStochastic, optim.MethodMiniBatch, optim.MethodMomentum, optim.MethodRMSProp},
			mutate:  func(c *optim.Config) { c.Tolerance = -1 },
			want:    optim.ErrInvalidParameter,
		},
		{
			name:    "zero batch size",
			methods: []optim.Method{optim.MethodMiniBatch},
			mutate:  func(c *optim.Config) { c.BatchSize = 0 },
			want:    optim.ErrInvalidParameter,
		},
		{
			name:    "momentum of one",
			methods: []optim.Method{optim.MethodMomentum},
			mutate:  func(c *optim.Config) { c.Momentum = 1 },
			want:    optim.ErrInvalidParameter,
		},
		{
			name:    "negative momentum",
			methods: []optim.Method{optim.MethodMomentum},
			mutate:  func(c *optim.Config) { c.Momentum = -0.1 },
			want:    optim.ErrInvalidParameter,
		},
		{
			name:    "beta1 of one",
			methods: []optim.Method{optim.MethodAdam},
			mutate:  func(c *optim.Config) { c.Beta1 = 1 },
			want:    optim.ErrInvalidParameter,
		},
		{
			name:    "beta2 above one",
			methods: []optim.Method{optim.MethodAdam},
			mutate:  func(c *optim.Config) { c.Beta2 = 1.5 },
			want:    optim.ErrInvalidParameter,
		},
		{
			name:    "negative beta",
			methods: []optim.Method{optim.MethodRMSProp},
			mutate:  func(c *optim.Config) { c.Beta = -0.1 },
			want:    optim.ErrInvalidParameter,
		},
		{
			name:    "negative epsilon",
			methods: []optim.Method{optim.MethodAdam, optim.MethodRMSProp},
			mutate:  func(c *optim.Config) { c.Epsilon = -1 },
			want:    optim.ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			methods := tt.methods
			if methods == nil {
				methods = optim.Methods()
			}
			data, targets := tt.X, tt.y
			if tt.mutate != nil {
				data, targets = X, y
			}
			cfg := valid
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			for _, m := range methods {
				res, err := optim.Fit(m, data, targets, cfg)
				assert.ErrorIs(t, err, tt.want, m)
				assert.Equal(t, optim.Result{}, res, m)
			}
		})
	}
}

func TestSolvers_UnusedFieldsIgnored(t *testing.T) {
	X, y := line()

	// Batch gradient descent does not read BatchSize, Epochs or Momentum.
	_, err := optim.BatchGradientDescent(X, y, optim.Config{
		LearningRate: 0.01,
		Iterations:   5,
		Momentum:     7,
		BatchSize:    -1,
	})
	assert.NoError(t, err)
}

func TestResult_Final(t *testing.T) {
	assert.True(t, math.IsNaN(optim.Result{}.Final()))
	assert.Equal(t, 2.0, optim.Result{Costs: []float64{3, 2}}.Final())
}

func TestResult_Diverged(t *testing.T) {
	assert.False(t, optim.Result{Costs: []float64{3, 2}}.Diverged())
	assert.True(t, optim.Result{Costs: []float64{3, math.Inf(1)}}.Diverged())
	assert.True(t, optim.Result{Costs: []float64{math.NaN()}}.Diverged())
}
