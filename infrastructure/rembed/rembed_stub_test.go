//go:build !(cgo && rembed)

package rembed

import (
	"context"
	"testing"

	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/budget-tools/rateconv/domain/errors"
	"github.com/stretchr/testify/assert"
)

func TestStub_Unavailable(t *testing.T) {
	ctx := context.Background()
	interp := New()

	assert.False(t, Available)
	assert.Equal(t, "embedded", interp.Name())
	assert.ErrorIs(t, interp.Start(ctx, []string{"R"}), errors.ErrUnavailable)

	_, err := interp.Eval(ctx, entities.LibraryCall(entities.FinancialMath))
	assert.ErrorIs(t, err, errors.ErrUnavailable)
	assert.ErrorIs(t, interp.Stop(ctx), errors.ErrUnavailable)
}
