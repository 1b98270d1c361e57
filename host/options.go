package host

import (
	"log/slog"
)

// HomeEnv is the environment variable the R runtime reads its home from.
const HomeEnv = "R_HOME"

// DefaultStartupArgs start the runtime non-interactively without a banner.
var DefaultStartupArgs = []string{"R", "--silent", "--no-save"}

type sessionConfig struct {
	logger      *slog.Logger
	home        string
	startupArgs []string
	setenv      func(key, value string) error
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		logger:      slog.Default(),
		startupArgs: DefaultStartupArgs,
	}
}

// Option configures a Session.
type Option func(*sessionConfig)

// WithHome sets the runtime home directory exported as R_HOME before
// startup. An empty home leaves the environment untouched.
func WithHome(home string) Option {
	return func(c *sessionConfig) {
		c.home = home
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *sessionConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStartupArgs replaces the argv passed to the runtime.
func WithStartupArgs(args ...string) Option {
	return func(c *sessionConfig) {
		if len(args) > 0 {
			c.startupArgs = args
		}
	}
}

// withSetenv overrides os.Setenv in tests.
func withSetenv(fn func(key, value string) error) Option {
	return func(c *sessionConfig) {
		c.setenv = fn
	}
}
