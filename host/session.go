package host

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/budget-tools/rateconv/application/validation"
	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/budget-tools/rateconv/domain/errors"
	"github.com/budget-tools/rateconv/domain/ports"
)

// Session is the lifecycle-scoped handle to an embedded interpreter.
type Session struct {
	interp   ports.Interpreter
	id       string
	attached []string
	cfg      sessionConfig
	state    State
	mu       sync.Mutex
}

// NewSession wraps interp. The interpreter is not started until Initialize.
func NewSession(interp ports.Interpreter, opts ...Option) *Session {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.setenv == nil {
		cfg.setenv = os.Setenv
	}
	id := uuid.NewString()
	cfg.logger = cfg.logger.With("session", id)
	return &Session{interp: interp, id: id, cfg: cfg}
}

// ID identifies the session in log records.
func (s *Session) ID() string {
	return s.id
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attached returns the packages loaded with Library, in load order.
func (s *Session) Attached() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.attached...)
}

// Initialize exports the runtime home and starts the interpreter. It may
// only be called once. A failure leaves the session unusable; callers should
// treat it as fatal.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUninitialized {
		return s.violation("initialize")
	}

	if s.cfg.home != "" {
		if err := s.cfg.setenv(HomeEnv, s.cfg.home); err != nil {
			s.state = StateShutdown
			return &errors.StartupError{Backend: s.interp.Name(), Err: fmt.Errorf("set %s: %w", HomeEnv, err)}
		}
	}

	s.cfg.logger.Debug("starting interpreter",
		"backend", s.interp.Name(), "home", s.cfg.home, "args", s.cfg.startupArgs)

	if err := s.interp.Start(ctx, s.cfg.startupArgs); err != nil {
		// The runtime cannot be restarted in-process, so a failed start is terminal.
		s.state = StateShutdown
		return &errors.StartupError{Backend: s.interp.Name(), Err: err}
	}

	s.state = StateRunning
	s.cfg.logger.Info("interpreter started", "backend", s.interp.Name())
	return nil
}

// Library attaches a package to the global environment by evaluating
// library("<name>").
func (s *Session) Library(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return s.violation("library")
	}
	if name == "" {
		return &errors.LoadError{Package: name, Err: fmt.Errorf("empty package name")}
	}

	if _, err := s.interp.Eval(ctx, entities.LibraryCall(name)); err != nil {
		return &errors.LoadError{Package: name, Err: err}
	}

	s.attached = append(s.attached, name)
	s.cfg.logger.Info("package attached", "package", name)
	return nil
}

// RateConv evaluates rate.conv for req.
//
// The type tag and frequencies are checked before anything reaches the
// interpreter; an invalid request returns a failed result without an
// evaluation. The result is successful only when the evaluation raised no
// error and produced a numeric value.
func (s *Session) RateConv(ctx context.Context, req entities.RateRequest) (entities.FallibleDouble, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return entities.Failed[float64](), s.violation("rate_conv")
	}

	tag, ok := entities.TypeToString(req.Type).Get()
	if !ok {
		return entities.Failed[float64](), &errors.ConfigError{
			Field: "type",
			Err:   fmt.Errorf("unknown conversion type %d", int(req.Type)),
		}
	}

	if err := validation.Struct(req); err != nil {
		return entities.Failed[float64](), err
	}

	call, err := req.Call(tag)
	if err != nil {
		return entities.Failed[float64](), &errors.ConfigError{Err: err}
	}
	s.cfg.logger.Debug("evaluating", "call", call.String())

	val, err := s.interp.Eval(ctx, call)
	if err != nil {
		return entities.Failed[float64](), &errors.EvalError{Call: call.String(), Err: err}
	}

	rate, ok := val.Float64()
	if !ok {
		return entities.Failed[float64](), &errors.EvalError{
			Call: call.String(),
			Err:  fmt.Errorf("%w: got %s", errors.ErrNoValue, val.Kind),
		}
	}

	s.cfg.logger.Debug("evaluated", "call", call.String(), "value", rate)
	return entities.Succeeded(rate), nil
}

// Shutdown stops the interpreter. It is terminal: no operation is valid
// afterwards, including a second Shutdown.
func (s *Session) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return s.violation("shutdown")
	}

	s.state = StateShutdown
	s.attached = nil
	if err := s.interp.Stop(ctx); err != nil {
		return fmt.Errorf("stop %s interpreter: %w", s.interp.Name(), err)
	}
	s.cfg.logger.Info("interpreter stopped", "backend", s.interp.Name())
	return nil
}

func (s *Session) violation(op string) error {
	return &errors.LifecycleError{Operation: op, State: s.state.String()}
}
