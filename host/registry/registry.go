// Package registry maps backend names to interpreter factories.
package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/budget-tools/rateconv/config"
	"github.com/budget-tools/rateconv/domain/ports"
)

// Factory builds an interpreter from the host configuration.
type Factory func(cfg *config.Config, logger *slog.Logger) (ports.Interpreter, error)

// Backend describes a registered interpreter backend.
type Backend struct {
	New         Factory
	Name        string
	Description string
	Available   bool
}

type registryConfig struct {
	strictMode bool
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{strictMode: true}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

// WithStrictMode controls whether registering a name twice fails.
// Default is true.
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// Registry holds the known backends.
type Registry struct {
	backends sync.Map // map[string]Backend
	config   registryConfig
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{config: cfg}
}

// Register adds b under b.Name.
func (r *Registry) Register(b Backend) error {
	if b.Name == "" {
		return fmt.Errorf("backend name is required")
	}
	if b.New == nil {
		return fmt.Errorf("backend %q has no factory", b.Name)
	}
	if r.config.strictMode {
		if _, exists := r.backends.Load(b.Name); exists {
			return fmt.Errorf("backend %q already registered", b.Name)
		}
	}
	r.backends.Store(b.Name, b)
	return nil
}

// Get returns the backend registered under name.
func (r *Registry) Get(name string) (Backend, bool) {
	v, ok := r.backends.Load(name)
	if !ok {
		return Backend{}, false
	}
	return v.(Backend), true
}

// New builds the interpreter for cfg.Backend.
func (r *Registry) New(cfg *config.Config, logger *slog.Logger) (ports.Interpreter, error) {
	b, ok := r.Get(cfg.Backend)
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (known: %v)", cfg.Backend, r.List())
	}
	return b.New(cfg, logger)
}

// List returns the registered backend names, sorted.
func (r *Registry) List() []string {
	var names []string
	r.backends.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	slices.Sort(names)
	return names
}
