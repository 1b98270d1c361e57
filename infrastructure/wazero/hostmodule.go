package wazero

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// maxLogSize bounds a guest log record read from memory.
const maxLogSize = 64 * 1024

func registerHostModule(ctx context.Context, rt wazero.Runtime, logger *slog.Logger) error {
	_, err := rt.NewHostModuleBuilder(HostModuleName).
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, packed uint64) {
			logGuestMessage(ctx, logger, m, packed)
		}).
		Export("log_message").
		Instantiate(ctx)
	return err
}

type guestLog struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func logGuestMessage(ctx context.Context, logger *slog.Logger, m api.Module, packed uint64) {
	ptr, length := unpackPtrLen(packed)
	if length > maxLogSize || m.Memory() == nil {
		return
	}
	payload, ok := m.Memory().Read(ptr, length)
	if !ok {
		return
	}

	var rec guestLog
	if err := json.Unmarshal(payload, &rec); err != nil {
		logger.InfoContext(ctx, "guest log (raw)", "module", m.Name(), "payload", string(payload))
		return
	}
	logger.Log(ctx, parseLevel(rec.Level), rec.Message, "module", m.Name())
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// unpackPtrLen splits a packed i64: upper 32 bits pointer, lower 32 bits length.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}
