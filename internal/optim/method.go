package optim

import (
	"fmt"
	"strings"
)

// Method names a solver.
type Method string

// Registered solvers.
const (
	MethodBatch      Method = "batch"
	MethodStochastic Method = "stochastic"
	MethodMiniBatch  Method = "minibatch"
	MethodMomentum   Method = "momentum"
	MethodAdam       Method = "adam"
	MethodRMSProp    Method = "rmsprop"
)

// Func is the uniform solver signature.
type Func func(X [][]float64, y []float64, cfg Config) (Result, error)

var solvers = map[Method]Func{
	MethodBatch:      BatchGradientDescent,
	MethodStochastic: StochasticGradientDescent,
	MethodMiniBatch:  MiniBatchGradientDescent,
	MethodMomentum:   MomentumGradientDescent,
	MethodAdam:       Adam,
	MethodRMSProp:    RMSProp,
}

var aliases = map[string]Method{
	"bgd":        MethodBatch,
	"sgd":        MethodStochastic,
	"mini-batch": MethodMiniBatch,
	"mbgd":       MethodMiniBatch,
}

// Methods returns every registered method in a fixed order.
func Methods() []Method {
	return []Method{
		MethodBatch,
		MethodStochastic,
		MethodMiniBatch,
		MethodMomentum,
		MethodAdam,
		MethodRMSProp,
	}
}

// ParseMethod resolves a method name, case-insensitively. Short aliases such
// as "sgd" and "bgd" are accepted.
func ParseMethod(name string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if m, ok := aliases[key]; ok {
		return m, nil
	}
	if _, ok := solvers[Method(key)]; ok {
		return Method(key), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// Fit runs the solver registered for method.
func Fit(method Method, X [][]float64, y []float64, cfg Config) (Result, error) {
	fn, ok := solvers[method]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return fn(X, y, cfg)
}

// String implements fmt.Stringer.
func (m Method) String() string {
	return string(m)
}
