// Package errors provides the host's error types.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/budget-tools/rateconv/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

var (
	// ErrNotRunning is returned when an operation needs a running session.
	ErrNotRunning = stdErrors.New("interpreter is not running")

	// ErrAlreadyStarted is returned when the runtime was already started in this process.
	ErrAlreadyStarted = stdErrors.New("interpreter already started")

	// ErrUnavailable is returned by backends that were not compiled in.
	ErrUnavailable = stdErrors.New("interpreter backend unavailable")

	// ErrNoValue is returned when an evaluation produced no usable value.
	ErrNoValue = stdErrors.New("evaluation produced no value")
)

// DetailedError is implemented by errors that can describe themselves as an
// ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return entities.NewErrorDetail("internal", err.Error())
}

// LifecycleError reports an operation attempted in the wrong session state.
// It is a caller bug, not a runtime failure.
type LifecycleError struct {
	Operation string
	State     string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Operation, e.State)
}

// Is matches ErrNotRunning when the session was not in the running state.
func (e *LifecycleError) Is(target error) bool {
	return target == ErrNotRunning && e.State != "running"
}

// ToErrorDetail implements DetailedError.
func (e *LifecycleError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("lifecycle", e.Error()).WithCode(e.Operation)
}

// StartupError represents a failure to start the interpreter.
type StartupError struct {
	Err     error
	Backend string
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("failed to start %s interpreter: %v", e.Backend, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *StartupError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("startup", e.Error()).WithCode(e.Backend)
}

// LoadError represents a failure to attach an extension package.
type LoadError struct {
	Err     error
	Package string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load package %s: %v", e.Package, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *LoadError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("load", e.Error()).WithCode(e.Package)
}

// EvalError represents an error raised while evaluating a call.
type EvalError struct {
	Err  error
	Call string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluation of %s failed: %v", e.Call, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *EvalError) ToErrorDetail() *entities.ErrorDetail {
	code := "eval_error"
	if stdErrors.Is(e.Err, ErrNoValue) {
		code = "no_value"
	}
	return entities.NewErrorDetail("eval", e.Error()).
		WithCode(code).
		WithDetails(map[string]any{"call": e.Call})
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("config", e.Error()).WithCode(e.Field)
}

// ExecError represents a command execution error.
type ExecError struct {
	Err      error
	Command  string
	Stderr   string
	ExitCode int
}

func (e *ExecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to execute '%s': %v", e.Command, e.Err)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("command '%s' exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("command '%s' exited with code %d", e.Command, e.ExitCode)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ExecError) ToErrorDetail() *entities.ErrorDetail {
	details := map[string]any{"command": e.Command, "exit_code": e.ExitCode}
	if e.Stderr != "" {
		details["stderr"] = e.Stderr
	}
	return entities.NewErrorDetail("exec", e.Error()).
		WithCode(fmt.Sprintf("exit_%d", e.ExitCode)).
		WithDetails(details)
}

// SchemaError represents a schema generation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return entities.NewErrorDetail("validation", e.Error()).WithCode("schema")
}
