package wazero

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/budget-tools/rateconv/domain/errors"
	"github.com/budget-tools/rateconv/domain/ports"
)

var _ ports.Interpreter = (*Interpreter)(nil)

// HostModuleName is the import module guests use for host functions.
const HostModuleName = "rateconv_host"

// Interpreter implements ports.Interpreter on a wazero runtime.
type Interpreter struct {
	runtime  wazero.Runtime
	logger   *slog.Logger
	modules  map[string][]byte
	paths    []string
	attached []api.Module
	memLimit uint32
	started  bool
	stopped  bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLibraryPaths sets the directories searched for <name>.wasm.
func WithLibraryPaths(paths ...string) Option {
	return func(i *Interpreter) {
		i.paths = append(i.paths, paths...)
	}
}

// WithModule registers wasm bytes under name, taking precedence over the
// search paths.
func WithModule(name string, wasm []byte) Option {
	return func(i *Interpreter) {
		i.modules[name] = wasm
	}
}

// WithMemoryLimitPages caps guest memory in 64KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(i *Interpreter) {
		i.memLimit = pages
	}
}

// WithLogger sets the logger used for host and guest log records.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an Interpreter. The runtime is created by Start.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		logger:  slog.Default(),
		modules: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Name implements ports.Interpreter.
func (i *Interpreter) Name() string { return "wasm" }

// Start creates the runtime, WASI and the host module. The argv is only logged.
func (i *Interpreter) Start(ctx context.Context, args []string) error {
	if i.started {
		return errors.ErrAlreadyStarted
	}

	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if i.memLimit > 0 {
		cfg = cfg.WithMemoryLimitPages(i.memLimit)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return fmt.Errorf("instantiate wasi: %w", err)
	}
	if err := registerHostModule(ctx, rt, i.logger); err != nil {
		_ = rt.Close(ctx)
		return fmt.Errorf("register host module: %w", err)
	}

	i.runtime = rt
	i.started = true
	i.logger.Debug("wasm runtime started", "args", args, "paths", i.paths)
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

	mod, fn := i.lookup(call.Function)
	if fn == nil {
		return entities.Null, fmt.Errorf("could not find function %q", call.Function)
	}

	params, err := marshalArgs(ctx, mod, fn.Definition().ParamTypes(), call.Args)
	if err != nil {
		return entities.Null, err
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		return entities.Null, fmt.Errorf("%s trapped: %w", call.Function, err)
	}
	return unmarshalResults(fn.Definition().ResultTypes(), results)
}

// Stop closes the runtime and every attached module.
func (i *Interpreter) Stop(ctx context.Context) error {
	if !i.started || i.stopped {
		return errors.ErrNotRunning
	}
	i.stopped = true
	i.attached = nil
	return i.runtime.Close(ctx)
}

func (i *Interpreter) library(ctx context.Context, call entities.Call) (entities.Value, error) {
	if len(call.Args) != 1 || call.Args[0].Kind != entities.KindString {
		return entities.Null, fmt.Errorf("library() takes one package name")
	}
	name := call.Args[0].Str

	if i.isAttached(name) {
		return entities.String(name), nil
	}

	wasm, err := i.source(name)
	if err != nil {
		return entities.Null, err
	}

	compiled, err := i.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return entities.Null, fmt.Errorf("compile %s: %w", name, err)
	}

	mod, err := i.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return entities.Null, fmt.Errorf("instantiate %s: %w", name, err)
	}

	// Reactor modules export _initialize instead of _start.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return entities.Null, fmt.Errorf("initialize %s: %w", name, err)
		}
	}

	i.attached = append(i.attached, mod)
	i.logger.Debug("wasm package attached", "package", name, "exports", len(mod.ExportedFunctionDefinitions()))
	return entities.String(name), nil
}

func (i *Interpreter) source(name string) ([]byte, error) {
	if wasm, ok := i.modules[name]; ok {
		return wasm, nil
	}
	for _, dir := range i.paths {
		wasm, err := os.ReadFile(filepath.Join(dir, name+".wasm"))
		if err == nil {
			return wasm, nil
		}
		if !stdErrors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("there is no package called '%s'", name)
}

func (i *Interpreter) isAttached(name string) bool {
	return slices.ContainsFunc(i.attached, func(m api.Module) bool { return m.Name() == name })
}

func (i *Interpreter) lookup(name string) (api.Module, api.Function) {
	for idx := len(i.attached) - 1; idx >= 0; idx-- {
		mod := i.attached[idx]
		if fn := mod.ExportedFunction(name); fn != nil {
			return mod, fn
		}
	}
	return nil, nil
}
