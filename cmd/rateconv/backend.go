package main

import (
	"log/slog"

	"github.com/budget-tools/rateconv/config"
	"github.com/budget-tools/rateconv/domain/ports"
	"github.com/budget-tools/rateconv/host/registry"
	"github.com/budget-tools/rateconv/infrastructure/exec"
	"github.com/budget-tools/rateconv/infrastructure/rembed"
	"github.com/budget-tools/rateconv/infrastructure/rscript"
	"github.com/budget-tools/rateconv/infrastructure/wazero"
)

// defaultBackend is embedded R when it was compiled in, Rscript otherwise.
func defaultBackend() string {
	if rembed.Available {
		return config.BackendEmbedded
	}
	return config.BackendRscript
}

// newInterpreter is replaced in tests.
var newInterpreter = buildInterpreter

func buildInterpreter(cfg *config.Config, logger *slog.Logger) (ports.Interpreter, error) {
	return backends().New(cfg, logger)
}

func backends() *registry.Registry {
	r := registry.NewRegistry()
	for _, b := range []registry.Backend{
		{
			Name:        config.BackendEmbedded,
			Description: "libR linked into this process",
			Available:   rembed.Available,
			New: func(_ *config.Config, logger *slog.Logger) (ports.Interpreter, error) {
				return rembed.New(rembed.WithLogger(logger)), nil
			},
		},
		{
			Name:        config.BackendRscript,
			Description: "one Rscript process per evaluation",
			Available:   true,
			New: func(cfg *config.Config, logger *slog.Logger) (ports.Interpreter, error) {
				runner := exec.NewRunner(exec.WithTimeout(cfg.Rscript.Timeout), exec.WithLogger(logger))
				return rscript.New(runner,
					rscript.WithPath(cfg.Rscript.Path),
					rscript.WithTimeout(cfg.Rscript.Timeout),
					rscript.WithEnv(cfg.Rscript.Env...),
					rscript.WithLogger(logger),
				), nil
			},
		},
		{
			Name:        config.BackendWasm,
			Description: "WebAssembly modules run with wazero",
			Available:   true,
			New: func(cfg *config.Config, logger *slog.Logger) (ports.Interpreter, error) {
				return wazero.New(
					wazero.WithLibraryPaths(cfg.LibraryPaths...),
					wazero.WithMemoryLimitPages(cfg.Wasm.MemoryLimitPages),
					wazero.WithLogger(logger),
				), nil
			},
		},
	} {
		if err := r.Register(b); err != nil {
			panic(err)
		}
	}
	return r
}
