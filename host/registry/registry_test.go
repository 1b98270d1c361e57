package registry

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budget-tools/rateconv/config"
	"github.com/budget-tools/rateconv/domain/ports"
	"github.com/budget-tools/rateconv/internal/interptest"
)

func fakeBackend(name string) Backend {
	return Backend{
		Name:      name,
		Available: true,
		New: func(*config.Config, *slog.Logger) (ports.Interpreter, error) {
			return interptest.New(), nil
		},
	}
}

func TestRegistry_RegisterAndNew(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(fakeBackend("wasm")))
	require.NoError(t, r.Register(fakeBackend("embedded")))

	assert.Equal(t, []string{"embedded", "wasm"}, r.List())

	interp, err := r.New(&config.Config{Backend: "wasm"}, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "fake", interp.Name())
}

func TestRegistry_UnknownBackend(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(fakeBackend("rscript")))

	_, err := r.New(&config.Config{Backend: "jvm"}, slog.Default())
	assert.ErrorContains(t, err, `unknown backend "jvm"`)
	assert.ErrorContains(t, err, "rscript")
}

func TestRegistry_StrictModeRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(fakeBackend("wasm")))
	assert.ErrorContains(t, r.Register(fakeBackend("wasm")), "already registered")

	lax := NewRegistry(WithStrictMode(false))
	require.NoError(t, lax.Register(fakeBackend("wasm")))
	assert.NoError(t, lax.Register(fakeBackend("wasm")))
}

func TestRegistry_RegisterValidates(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Backend{New: fakeBackend("x").New}))
	assert.Error(t, r.Register(Backend{Name: "x"}))
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	b := fakeBackend("embedded")
	b.Description = "in-process"
	require.NoError(t, r.Register(b))

	got, ok := r.Get("embedded")
	require.True(t, ok)
	assert.Equal(t, "in-process", got.Description)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}
