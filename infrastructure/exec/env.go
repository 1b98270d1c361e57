package exec

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

var (
	// Dynamic linker variables can inject shared libraries into R.
	blockedEnvPrefixes = []string{"LD_", "DYLD_"}

	blockedEnvExact = []string{"IFS", "LOCPATH", "BASH_ENV", "ENV"}
)

// SanitizeEnv drops malformed entries and variables that can inject code
// into the child process.
func SanitizeEnv(ctx context.Context, logger *slog.Logger, env []string) []string {
	if len(env) == 0 {
		return env
	}

	sanitized := make([]string, 0, len(env))
	for _, e := range env {
		key, _, found := strings.Cut(e, "=")
		if !found || key == "" {
			logger.WarnContext(ctx, "malformed environment variable skipped", "env", e)
			continue
		}
		if IsBlockedEnv(key) {
			logger.WarnContext(ctx, "blocked environment variable", "env_var", key)
			continue
		}
		sanitized = append(sanitized, e)
	}
	return sanitized
}

// IsBlockedEnv reports whether key may never be passed to a child process.
func IsBlockedEnv(key string) bool {
	upper := strings.ToUpper(key)
	for _, prefix := range blockedEnvPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return slices.Contains(blockedEnvExact, upper)
}
