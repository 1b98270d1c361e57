// Package exec runs external commands for out-of-process backends.
package exec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/budget-tools/rateconv/domain/ports"
)

var _ ports.CommandRunner = (*Runner)(nil)

// DefaultTimeout bounds a command when the request sets none.
const DefaultTimeout = 30 * time.Second

// Runner implements ports.CommandRunner with os/exec.
type Runner struct {
	logger        *slog.Logger
	timeout       time.Duration
	maxOutputSize int
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the default execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMaxOutputSize caps captured stdout and stderr, each, at n bytes.
func WithMaxOutputSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxOutputSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:        slog.Default(),
		timeout:       DefaultTimeout,
		maxOutputSize: DefaultMaxOutputSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes req. A non-zero exit or a timeout is reported in the result;
// the error is non-nil only when the command could not be run at all.
func (r *Runner) Run(ctx context.Context, req ports.CommandRequest) (*ports.CommandResult, error) {
	if req.Command == "" {
		return nil, fmt.Errorf("command is required")
	}

	timeout := r.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: the command comes from host configuration
	cmd := exec.CommandContext(ctx, req.Command, req.Args...)
	if req.Dir != "" {
		cmd.Dir = req.Dir
	}
	if len(req.Env) > 0 {
		cmd.Env = SanitizeEnv(ctx, r.logger, req.Env)
	}

	stdout := NewBoundedBuffer(r.maxOutputSize)
	stderr := NewBoundedBuffer(r.maxOutputSize)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()

	res := &ports.CommandResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  time.Since(start),
		Truncated: stdout.Truncated || stderr.Truncated,
	}
	if res.Truncated {
		r.logger.WarnContext(ctx, "command output truncated", "command", req.Command, "limit", r.maxOutputSize)
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.IsTimeout = true
			res.ExitCode = -1
			return res, nil
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}

		return nil, err
	}

	return res, nil
}
