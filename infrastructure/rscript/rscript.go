// Package rscript evaluates calls out of process with Rscript.
//
// Each Eval is one Rscript run. Packages attached with library() are
// re-attached at the top of every script, so the observable behaviour
// matches a single long-lived session at the cost of startup time.
package rscript

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/budget-tools/rateconv/domain/errors"
	"github.com/budget-tools/rateconv/domain/ports"
)

var _ ports.Interpreter = (*Interpreter)(nil)

// DefaultPath is the Rscript executable looked up on PATH.
const DefaultPath = "Rscript"

// marker prefixes the result line so package startup noise on stdout is ignored.
const marker = "__rateconv__"

// Interpreter implements ports.Interpreter on top of a CommandRunner.
type Interpreter struct {
	runner   ports.CommandRunner
	logger   *slog.Logger
	path     string
	flags    []string
	env      []string
	attached []string
	timeout  time.Duration
	started  bool
	stopped  bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithPath sets the Rscript executable.
func WithPath(path string) Option {
	return func(i *Interpreter) {
		if path != "" {
			i.path = path
		}
	}
}

// WithTimeout bounds each Rscript run.
func WithTimeout(d time.Duration) Option {
	return func(i *Interpreter) {
		i.timeout = d
	}
}

// WithEnv adds KEY=VALUE variables to the environment of every run.
func WithEnv(vars ...string) Option {
	return func(i *Interpreter) {
		i.env = append(i.env, vars...)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an Interpreter that runs commands through runner.
func New(runner ports.CommandRunner, opts ...Option) *Interpreter {
	i := &Interpreter{
		runner: runner,
		path:   DefaultPath,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Name implements ports.Interpreter.
func (i *Interpreter) Name() string { return "rscript" }

// Start checks that Rscript runs. args[1:] are passed to every run.
func (i *Interpreter) Start(ctx context.Context, args []string) error {
	if i.started {
		return errors.ErrAlreadyStarted
	}
	if len(args) > 1 {
		i.flags = append([]string(nil), args[1:]...)
	}

	res, err := i.runner.Run(ctx, ports.CommandRequest{
		Command: i.path,
		Args:    []string{"--version"},
		Timeout: i.timeout,
	})
	if err != nil {
		return &errors.ExecError{Command: i.path, Err: err}
	}
	if res.ExitCode != 0 {
		return &errors.ExecError{Command: i.path, ExitCode: res.ExitCode, Stderr: strings.TrimSpace(res.Stderr)}
	}

	i.logger.Debug("rscript available", "path", i.path, "version", firstLine(res.Stdout+res.Stderr))
	i.started = true
	return nil
}

// Eval implements ports.Interpreter.
func (i *Interpreter) Eval(ctx context.Context, call entities.Call) (entities.Value, error) {
	if !i.started || i.stopped {
		return entities.Null, errors.ErrNotRunning
	}

	if call.Function == "library" {
		return i.library(ctx, call)
	}

	out, err := i.run(ctx, i.script(call))
	if err != nil {
		return entities.Null, err
	}
	return parseResult(out)
}

// Stop implements ports.Interpreter.
func (i *Interpreter) Stop(context.Context) error {
	i.stopped = true
	i.attached = nil
	return nil
}

func (i *Interpreter) library(ctx context.Context, call entities.Call) (entities.Value, error) {
	if len(call.Args) != 1 || call.Args[0].Kind != entities.KindString {
		return entities.Null, fmt.Errorf("library() takes one package name")
	}
	name := call.Args[0].Str

	script := i.prelude() + attach(name) + "\n" + result(entities.String(name).Deparse())
	out, err := i.run(ctx, script)
	if err != nil {
		return entities.Null, err
	}

	i.attached = append(i.attached, name)
	return parseResult(out)
}

func (i *Interpreter) script(call entities.Call) string {
	return i.prelude() + result(call.String())
}

func (i *Interpreter) prelude() string {
	var b strings.Builder
	for _, name := range i.attached {
		b.WriteString(attach(name))
		b.WriteByte('\n')
	}
	return b.String()
}

func (i *Interpreter) run(ctx context.Context, script string) (string, error) {
	args := append(append([]string(nil), i.flags...), "-e", script)
	i.logger.Debug("running rscript", "script", script)

	req := ports.CommandRequest{
		Command: i.path,
		Args:    args,
		Timeout: i.timeout,
	}
	if len(i.env) > 0 {
		req.Env = append(os.Environ(), i.env...)
	}

	res, err := i.runner.Run(ctx, req)
	if err != nil {
		return "", &errors.ExecError{Command: i.path, Err: err}
	}
	if res.IsTimeout {
		return "", &errors.ExecError{Command: i.path, ExitCode: res.ExitCode, Err: fmt.Errorf("timed out")}
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s", runtimeMessage(res.Stderr, res.ExitCode))
	}
	return res.Stdout, nil
}

func attach(name string) string {
	return fmt.Sprintf("suppressPackageStartupMessages(library(%s))", entities.String(name).Deparse())
}

// result evaluates expr and prints its first element as "<marker><typeof>\t<value>".
func result(expr string) string {
	return fmt.Sprintf(`.v <- %s
if (length(.v) == 0) cat(%q, "NULL\n", sep = "") else {
  .v <- .v[[1]]
  cat(%q, typeof(.v), "\t", if (is.double(.v)) sprintf("%%.17g", .v) else as.character(.v), "\n", sep = "")
}`, expr, marker, marker)
}

func parseResult(stdout string) (entities.Value, error) {
	var line string
	sc := bufio.NewScanner(strings.NewReader(stdout))
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), marker) {
			line = strings.TrimPrefix(sc.Text(), marker)
		}
	}
	if line == "" {
		return entities.Null, fmt.Errorf("no result in Rscript output")
	}

	kind, raw, _ := strings.Cut(line, "\t")
	if kind == "NULL" || raw == "NA" {
		return entities.Null, nil
	}

	switch kind {
	case "double":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return entities.Null, fmt.Errorf("parse double %q: %w", raw, err)
		}
		return entities.Real(f), nil
	case "integer":
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return entities.Null, fmt.Errorf("parse integer %q: %w", raw, err)
		}
		return entities.Integer(int32(n)), nil
	case "logical":
		return entities.Logical(raw == "TRUE"), nil
	case "character":
		return entities.String(raw), nil
	default:
		return entities.Null, nil
	}
}

// runtimeMessage extracts R's error message from stderr.
func runtimeMessage(stderr string, code int) string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(stderr), "\n") {
		l = strings.TrimSpace(l)
		if l == "" || l == "Execution halted" {
			continue
		}
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return fmt.Sprintf("Rscript exited with code %d", code)
	}
	return strings.Join(lines, " ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
