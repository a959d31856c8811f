package optim

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with solver-specific helpers so every run logs the
// same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that writes human-readable records to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewJSONLogger creates a Logger that writes JSON records to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithMethod adds a method field to the logger.
func (l *Logger) WithMethod(m Method) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", string(m)),
	}
}

// LogStart logs the beginning of a solver run.
func (l *Logger) LogStart(m Method, rows, cols int, lr float64, budget int) {
	l.Debug("fit started",
		"method", string(m),
		"rows", rows,
		"cols", cols,
		"lr", lr,
		"budget", budget,
	)
}

// LogStep logs the cost recorded at one outer step.
func (l *Logger) LogStep(m Method, step int, cost float64) {
	l.Debug("step",
		"method", string(m),
		"step", step,
		"cost", cost,
	)
}

// LogFinished logs the outcome of a solver run.
func (l *Logger) LogFinished(m Method, res Result) {
	switch {
	case res.Diverged():
		l.Warn("fit diverged",
			"method", string(m),
			"iterations", res.Iterations,
			"cost", res.Final(),
		)
	case res.Converged:
		l.Info("fit converged",
			"method", string(m),
			"iterations", res.Iterations,
			"cost", res.Final(),
		)
	default:
		l.Info("fit budget exhausted",
			"method", string(m),
			"iterations", res.Iterations,
			"cost", res.Final(),
		)
	}
}
