package ports

import (
	"context"

	"github.com/budget-tools/rateconv/domain/entities"
)

// Interpreter is an embedded language runtime that evaluates call
// expressions in its global environment.
//
// Implementations are not safe for concurrent use. Start must succeed before
// Eval is called, and Stop is terminal.
type Interpreter interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// Start boots the runtime with the given argv (argv[0] is the program name).
	Start(ctx context.Context, args []string) error

	// Eval evaluates call synchronously. An error raised inside the runtime
	// is returned as a non-nil error; the returned value is then Null.
	Eval(ctx context.Context, call entities.Call) (entities.Value, error)

	// Stop shuts the runtime down and releases its resources.
	Stop(ctx context.Context) error
}
