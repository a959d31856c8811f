package optim

import "errors"

// Sentinel errors returned by the solvers. Callers match them with errors.Is;
// the returned errors wrap them with the offending values.
var (
	// ErrDimensionMismatch indicates rows of unequal width, a target vector
	// whose length differs from the row count, or a theta of the wrong width.
	ErrDimensionMismatch = errors.New("optim: dimension mismatch")

	// ErrEmptyDataset indicates a design matrix with zero rows.
	ErrEmptyDataset = errors.New("optim: empty dataset")

	// ErrInvalidParameter indicates a configuration value outside its domain.
	ErrInvalidParameter = errors.New("optim: invalid parameter")

	// ErrUnknownMethod indicates a method name that no solver is registered for.
	ErrUnknownMethod = errors.New("optim: unknown method")
)
