//go:build !(cgo && rembed)

package rembed

import (
	"context"

	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/budget-tools/rateconv/domain/errors"
)

// Available reports whether embedded R was compiled in.
const Available = false

// Start always fails: embedded R was not compiled in.
func (i *Interpreter) Start(context.Context, []string) error {
	return errors.ErrUnavailable
}

// Eval always fails: embedded R was not compiled in.
func (i *Interpreter) Eval(context.Context, entities.Call) (entities.Value, error) {
	return entities.Null, errors.ErrUnavailable
}

// Stop always fails: embedded R was not compiled in.
func (i *Interpreter) Stop(context.Context) error {
	return errors.ErrUnavailable
}
