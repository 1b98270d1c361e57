package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleError(t *testing.T) {
	err := &LifecycleError{Operation: "rate_conv", State: "uninitialized"}

	assert.Equal(t, "rate_conv not allowed in state uninitialized", err.Error())
	assert.True(t, errors.Is(err, ErrNotRunning))

	running := &LifecycleError{Operation: "initialize", State: "running"}
	assert.False(t, errors.Is(running, ErrNotRunning))

	detail := err.ToErrorDetail()
	assert.Equal(t, "lifecycle", detail.Type)
	assert.Equal(t, "rate_conv", detail.Code)
}

func TestStartupError(t *testing.T) {
	err := &StartupError{Backend: "embedded", Err: ErrUnavailable}

	assert.Equal(t, "failed to start embedded interpreter: interpreter backend unavailable", err.Error())
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, "startup", err.ToErrorDetail().Type)
}

func TestLoadError(t *testing.T) {
	base := fmt.Errorf("there is no package called 'FinancialMath'")
	err := &LoadError{Package: "FinancialMath", Err: base}

	assert.Contains(t, err.Error(), "failed to load package FinancialMath")
	assert.True(t, errors.Is(err, base))

	var loadErr *LoadError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &loadErr))
	assert.Equal(t, "FinancialMath", loadErr.Package)
}

func TestEvalError_Codes(t *testing.T) {
	err := &EvalError{Call: "f()", Err: fmt.Errorf("object not found")}
	assert.Equal(t, "eval_error", err.ToErrorDetail().Code)

	err = &EvalError{Call: "f()", Err: ErrNoValue}
	assert.Equal(t, "no_value", err.ToErrorDetail().Code)
	assert.Equal(t, "evaluation of f() failed: evaluation produced no value", err.Error())
}

func TestExecError(t *testing.T) {
	err := &ExecError{Command: "Rscript", ExitCode: 1, Stderr: "Error in library"}
	assert.Equal(t, "command 'Rscript' exited with code 1: Error in library", err.Error())
	assert.Equal(t, "exit_1", err.ToErrorDetail().Code)

	base := errors.New("not found")
	err = &ExecError{Command: "Rscript", Err: base}
	assert.Equal(t, "failed to execute 'Rscript': not found", err.Error())
	assert.True(t, errors.Is(err, base))
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "backend", Err: errors.New("unknown backend")}
	assert.Equal(t, "config validation failed for field 'backend': unknown backend", err.Error())

	err = &ConfigError{Err: errors.New("bad")}
	assert.Equal(t, "config validation failed: bad", err.Error())
}

func TestToErrorDetail_Codes(t *testing.T) {
	tests := []struct {
		err     DetailedError
		typ     string
		code    string
		details map[string]any
	}{
		{&LifecycleError{Operation: "rate_conv", State: "shutdown"}, "lifecycle", "rate_conv", nil},
		{&StartupError{Backend: "embedded", Err: ErrUnavailable}, "startup", "embedded", nil},
		{&LoadError{Package: "FinancialMath", Err: errors.New("missing")}, "load", "FinancialMath", nil},
		{&ConfigError{Field: "request.frequency", Err: errors.New("gt=0")}, "config", "request.frequency", nil},
		{&SchemaError{Err: errors.New("bad")}, "validation", "schema", nil},
		{
			&EvalError{Call: "rate.conv(1)", Err: errors.New("boom")},
			"eval", "eval_error", map[string]any{"call": "rate.conv(1)"},
		},
		{
			&EvalError{Call: "rate.conv(1)", Err: fmt.Errorf("%w: got NULL", ErrNoValue)},
			"eval", "no_value", map[string]any{"call": "rate.conv(1)"},
		},
		{
			&ExecError{Command: "Rscript", ExitCode: 1, Stderr: "Error in f()"},
			"exec", "exit_1", map[string]any{"command": "Rscript", "exit_code": 1, "stderr": "Error in f()"},
		},
		{
			&ExecError{Command: "Rscript", ExitCode: -1, Err: errors.New("timed out")},
			"exec", "exit_-1", map[string]any{"command": "Rscript", "exit_code": -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.code, func(t *testing.T) {
			detail := ToErrorDetail(tt.err)
			require.NotNil(t, detail)
			assert.Equal(t, tt.typ, detail.Type)
			assert.Equal(t, tt.code, detail.Code)
			assert.Equal(t, tt.err.Error(), detail.Message)
			assert.Equal(t, tt.details, detail.Details)
		})
	}
}

func TestToErrorDetail(t *testing.T) {
	assert.Nil(t, ToErrorDetail(nil))

	detail := entities.NewErrorDetail("eval", "x")
	assert.Same(t, detail, ToErrorDetail(fmt.Errorf("wrap: %w", detail)))

	assert.Equal(t, "load", ToErrorDetail(&LoadError{Package: "p", Err: errors.New("e")}).Type)

	generic := ToErrorDetail(errors.New("plain"))
	assert.Equal(t, "internal", generic.Type)
	assert.Equal(t, "plain", generic.Message)
}
