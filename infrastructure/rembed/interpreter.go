package rembed

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/budget-tools/rateconv/domain/errors"
	"github.com/budget-tools/rateconv/domain/ports"
)

var _ ports.Interpreter = (*Interpreter)(nil)

// started guards the one-start-per-process rule across Interpreter values.
var started atomic.Bool

// Interpreter is the embedded R runtime.
type Interpreter struct {
	logger  *slog.Logger
	worker  *worker
	running bool
	stopped bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an Interpreter. R is not started until Start.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{logger: slog.Default()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Name implements ports.Interpreter.
func (i *Interpreter) Name() string { return "embedded" }

// startOnce claims the process-wide start and runs boot on w. The claim is
// released when boot never ran, so a cancelled Start can be retried.
func startOnce(ctx context.Context, w *worker, boot func()) error {
	if !started.CompareAndSwap(false, true) {
		return errors.ErrAlreadyStarted
	}
	if err := w.do(ctx, boot); err != nil {
		started.Store(false)
		return err
	}
	return nil
}
