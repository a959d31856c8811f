package optim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Predict returns one prediction per row of X:
//
//	prediction[i] = Σ_j X[i][j] * theta[j]
//
// Every row must have len(theta) columns. An empty X yields an empty result.
func Predict(X [][]float64, theta []float64) ([]float64, error) {
	for i, row := range X {
		if len(row) != len(theta) {
			return nil, fmt.Errorf("%w: row %d has %d columns, theta has %d",
				ErrDimensionMismatch, i, len(row), len(theta))
		}
	}
	return predict(X, theta), nil
}

// Cost returns the mean-squared-error cost of theta on (X, y):
//
//	cost = 1/(2m) * Σ_i (prediction[i] - y[i])²
func Cost(X [][]float64, y, theta []float64) (float64, error) {
	if err := checkTheta(X, y, theta); err != nil {
		return 0, err
	}
	return cost(X, y, theta), nil
}

// Gradient returns the analytic gradient of Cost with respect to theta:
//
//	gradient[j] = 1/m * Σ_i (prediction[i] - y[i]) * X[i][j]
func Gradient(X [][]float64, y, theta []float64) ([]float64, error) {
	if err := checkTheta(X, y, theta); err != nil {
		return nil, err
	}
	grad := make([]float64, len(theta))
	gradient(grad, X, y, theta, sequence(len(X)))
	return grad, nil
}

// AddBias returns a copy of X with a constant 1 prepended to every row, so the
// first theta entry acts as an intercept. Empty input is returned unchanged.
func AddBias(X [][]float64) [][]float64 {
	if len(X) == 0 {
		return X
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(row)+1)
		r[0] = 1
		copy(r[1:], row)
		out[i] = r
	}
	return out
}

func checkTheta(X [][]float64, y, theta []float64) error {
	if err := checkData(X, y); err != nil {
		return err
	}
	if len(theta) != len(X[0]) {
		return fmt.Errorf("%w: theta has %d entries, rows have %d columns",
			ErrDimensionMismatch, len(theta), len(X[0]))
	}
	return nil
}

func predict(X [][]float64, theta []float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = floats.Dot(row, theta)
	}
	return out
}

func cost(X [][]float64, y, theta []float64) float64 {
	var sum float64
	for i, row := range X {
		e := floats.Dot(row, theta) - y[i]
		sum += e * e
	}
	return sum / (2 * float64(len(X)))
}

// gradient writes the cost gradient restricted to the rows listed in idx into
// grad. Rows are accumulated in idx order and averaged over len(idx).
func gradient(grad []float64, X [][]float64, y, theta []float64, idx []int) {
	for j := range grad {
		grad[j] = 0
	}
	for _, i := range idx {
		e := floats.Dot(X[i], theta) - y[i]
		floats.AddScaled(grad, e, X[i])
	}
	floats.Scale(1/float64(len(idx)), grad)
}

// sequence returns 0, 1, ..., n-1.
func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
