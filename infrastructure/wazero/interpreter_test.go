package wazero

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/budget-tools/rateconv/domain/entities"
	domainerrors "github.com/budget-tools/rateconv/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"
)

// echoModule assembles a minimal extension exporting memory, allocate
// (always returning offset 1024) and
//
//	rate.conv(f64 rate, i32 conv, i32 typePtr, i32 typeLen, i32 nom) -> (f64 rate, i32 status)
//
// which echoes the rate with the given status.
func echoModule(status byte) []byte {
	return echoModuleWithMemory(status, 1)
}

// echoModuleWithMemory is echoModule declaring minPages of initial memory.
func echoModuleWithMemory(status, minPages byte) []byte {
	section := func(id byte, content []byte) []byte {
		return append([]byte{id, byte(len(content))}, content...)
	}
	name := func(s string) []byte {
		return append([]byte{byte(len(s))}, s...)
	}

	types := []byte{0x02,
		0x60, 0x01, 0x7f, 0x01, 0x7f, // (i32) -> i32
		0x60, 0x05, 0x7c, 0x7f, 0x7f, 0x7f, 0x7f, 0x02, 0x7c, 0x7f, // (f64 i32 i32 i32 i32) -> (f64 i32)
	}
	funcs := []byte{0x02, 0x00, 0x01}
	memory := []byte{0x01, 0x00, minPages}

	exports := []byte{0x03}
	exports = append(append(exports, name("memory")...), 0x02, 0x00)
	exports = append(append(exports, name("allocate")...), 0x00, 0x00)
	exports = append(append(exports, name("rate.conv")...), 0x00, 0x01)

	allocate := []byte{0x00, 0x41, 0x80, 0x08, 0x0b}         // i32.const 1024
	rateConv := []byte{0x00, 0x20, 0x00, 0x41, status, 0x0b} // local.get 0; i32.const status
	code := []byte{0x02}
	code = append(append(code, byte(len(allocate))), allocate...)
	code = append(append(code, byte(len(rateConv))), rateConv...)

	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	wasm = append(wasm, section(0x01, types)...)
	wasm = append(wasm, section(0x03, funcs)...)
	wasm = append(wasm, section(0x05, memory)...)
	wasm = append(wasm, section(0x07, exports)...)
	wasm = append(wasm, section(0x0a, code)...)
	return wasm
}

func startInterpreter(t *testing.T, opts ...Option) *Interpreter {
	t.Helper()
	ctx := context.Background()
	interp := New(opts...)
	require.NoError(t, interp.Start(ctx, []string{"R", "--silent"}))
	t.Cleanup(func() { _ = interp.Stop(ctx) })
	return interp
}

func TestInterpreter_CallAttachedModule(t *testing.T) {
	interp := startInterpreter(t, WithModule(entities.FinancialMath, echoModule(0)))
	ctx := context.Background()

	val, err := interp.Eval(ctx, entities.LibraryCall(entities.FinancialMath))
	require.NoError(t, err)
	assert.Equal(t, entities.String(entities.FinancialMath), val)

	call, err := entities.DefaultRateRequest().Call("interest")
	require.NoError(t, err)
	val, err = interp.Eval(ctx, call)
	require.NoError(t, err)
	assert.Equal(t, entities.Real(0.0675), val)

	mem, ok := interp.attached[0].Memory().Read(1024, 8)
	require.True(t, ok)
	assert.Equal(t, "interest", string(mem))
}

func TestInterpreter_NonZeroStatusIsError(t *testing.T) {
	interp := startInterpreter(t, WithModule("Broken", echoModule(1)))
	ctx := context.Background()

	_, err := interp.Eval(ctx, entities.LibraryCall("Broken"))
	require.NoError(t, err)

	call, err := entities.DefaultRateRequest().Call("force")
	require.NoError(t, err)
	val, err := interp.Eval(ctx, call)
	assert.ErrorContains(t, err, "status 1")
	assert.True(t, val.IsNull())
}

func TestInterpreter_LibraryFromSearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FinancialMath.wasm"), echoModule(0), 0o600))

	interp := startInterpreter(t, WithLibraryPaths(filepath.Join(dir, "missing"), dir))

	_, err := interp.Eval(context.Background(), entities.LibraryCall(entities.FinancialMath))
	require.NoError(t, err)
	assert.True(t, interp.isAttached(entities.FinancialMath))

	// attaching twice is a no-op
	_, err = interp.Eval(context.Background(), entities.LibraryCall(entities.FinancialMath))
	require.NoError(t, err)
	assert.Len(t, interp.attached, 1)
}

func TestInterpreter_MissingPackage(t *testing.T) {
	interp := startInterpreter(t, WithLibraryPaths(t.TempDir()))

	_, err := interp.Eval(context.Background(), entities.LibraryCall("Nope"))
	assert.ErrorContains(t, err, "there is no package called 'Nope'")
}

func TestInterpreter_InvalidModule(t *testing.T) {
	interp := startInterpreter(t, WithModule("Junk", []byte("not wasm")))

	_, err := interp.Eval(context.Background(), entities.LibraryCall("Junk"))
	assert.ErrorContains(t, err, "compile Junk")
}

func TestInterpreter_MemoryLimitPages(t *testing.T) {
	interp := startInterpreter(t,
		WithMemoryLimitPages(2),
		WithModule("Small", echoModuleWithMemory(0, 2)),
		WithModule("Large", echoModuleWithMemory(0, 3)),
	)
	ctx := context.Background()

	_, err := interp.Eval(ctx, entities.LibraryCall("Small"))
	require.NoError(t, err)

	_, err = interp.Eval(ctx, entities.LibraryCall("Large"))
	assert.ErrorContains(t, err, "Large")
	assert.False(t, interp.isAttached("Large"))
}

func TestInterpreter_UnknownFunction(t *testing.T) {
	interp := startInterpreter(t)

	_, err := interp.Eval(context.Background(), entities.NewCall("rate.conv", entities.Real(1)))
	assert.ErrorContains(t, err, `could not find function "rate.conv"`)
}

func TestInterpreter_SignatureMismatch(t *testing.T) {
	interp := startInterpreter(t, WithModule(entities.FinancialMath, echoModule(0)))
	ctx := context.Background()
	_, err := interp.Eval(ctx, entities.LibraryCall(entities.FinancialMath))
	require.NoError(t, err)

	_, err = interp.Eval(ctx, entities.NewCall("rate.conv", entities.Real(1), entities.Integer(2)))
	assert.ErrorContains(t, err, "signature mismatch")

	_, err = interp.Eval(ctx, entities.NewCall("rate.conv",
		entities.Integer(1), entities.Integer(12), entities.String("interest"), entities.Integer(1)))
	assert.ErrorContains(t, err, "slot 0")
}

func TestInterpreter_Lifecycle(t *testing.T) {
	ctx := context.Background()
	interp := New()

	_, err := interp.Eval(ctx, entities.LibraryCall("x"))
	assert.ErrorIs(t, err, domainerrors.ErrNotRunning)

	require.NoError(t, interp.Start(ctx, nil))
	assert.ErrorIs(t, interp.Start(ctx, nil), domainerrors.ErrAlreadyStarted)

	require.NoError(t, interp.Stop(ctx))
	assert.ErrorIs(t, interp.Stop(ctx), domainerrors.ErrNotRunning)

	_, err = interp.Eval(ctx, entities.LibraryCall("x"))
	assert.ErrorIs(t, err, domainerrors.ErrNotRunning)
}

func TestUnmarshalResults(t *testing.T) {
	val, err := unmarshalResults(nil, nil)
	require.NoError(t, err)
	assert.True(t, val.IsNull())

	val, err = unmarshalResults([]api.ValueType{api.ValueTypeI32}, []uint64{api.EncodeI32(-3)})
	require.NoError(t, err)
	assert.Equal(t, entities.Integer(-3), val)

	_, err = unmarshalResults([]api.ValueType{api.ValueTypeI64}, []uint64{1})
	assert.ErrorContains(t, err, "unsupported result signature")

	_, err = unmarshalResults([]api.ValueType{api.ValueTypeF64}, nil)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, parseLevel("chatty"))
}

func TestUnpackPtrLen(t *testing.T) {
	ptr, length := unpackPtrLen(uint64(1024)<<32 | 17)
	assert.Equal(t, uint32(1024), ptr)
	assert.Equal(t, uint32(17), length)
}
