// Package config loads host configuration with viper.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML file,
// RATECONV_* environment variables, then command-line flags.
package config

import (
	stdErrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/budget-tools/rateconv/application/validation"
	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/budget-tools/rateconv/domain/errors"
)

// EnvPrefix prefixes environment overrides, e.g. RATECONV_BACKEND.
const EnvPrefix = "RATECONV"

// Backends.
const (
	BackendEmbedded = "embedded"
	BackendRscript  = "rscript"
	BackendWasm     = "wasm"
)

// Config is the complete host configuration.
type Config struct {
	RHome        string        `mapstructure:"r_home" yaml:"r_home"`
	Backend      string        `mapstructure:"backend" yaml:"backend" validate:"oneof=embedded rscript wasm"`
	Library      string        `mapstructure:"library" yaml:"library" validate:"required"`
	Output       string        `mapstructure:"output" yaml:"output" validate:"oneof=text json"`
	LibraryPaths []string      `mapstructure:"library_paths" yaml:"library_paths"`
	Log          LogConfig     `mapstructure:"log" yaml:"log"`
	Request      RequestConfig `mapstructure:"request" yaml:"request"`
	Rscript      RscriptConfig `mapstructure:"rscript" yaml:"rscript"`
	Wasm         WasmConfig    `mapstructure:"wasm" yaml:"wasm"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
	Source bool   `mapstructure:"source" yaml:"source"`
}

// RequestConfig is the conversion to perform.
type RequestConfig struct {
	Type            string  `mapstructure:"type" yaml:"type" validate:"oneof=interest discount force"`
	Rate            float64 `mapstructure:"rate" yaml:"rate"`
	Frequency       int     `mapstructure:"frequency" yaml:"frequency" validate:"gt=0,lte=2147483647"`
	TargetFrequency int     `mapstructure:"target_frequency" yaml:"target_frequency" validate:"gt=0,lte=2147483647"`
}

// RscriptConfig configures the out-of-process backend.
type RscriptConfig struct {
	Path    string        `mapstructure:"path" yaml:"path" validate:"required"`
	Env     []string      `mapstructure:"env" yaml:"env" validate:"dive,contains=="`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
}

// WasmConfig configures the sandboxed backend.
type WasmConfig struct {
	// MemoryLimitPages caps guest memory in 64 KiB pages. Zero keeps the
	// runtime default.
	MemoryLimitPages uint32 `mapstructure:"memory_limit_pages" yaml:"memory_limit_pages" validate:"lte=65536"`
}

// ToRequest converts the configured request into a RateRequest.
func (r RequestConfig) ToRequest() (entities.RateRequest, error) {
	typ, err := entities.ParseConversionType(r.Type)
	if err != nil {
		return entities.RateRequest{}, &errors.ConfigError{Field: "request.type", Err: err}
	}
	return entities.RateRequest{
		Rate:            r.Rate,
		Frequency:       r.Frequency,
		Type:            typ,
		TargetFrequency: r.TargetFrequency,
	}, nil
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"backend":          "backend",
	"r-home":           "r_home",
	"library":          "library",
	"library-path":     "library_paths",
	"output":           "output",
	"rate":             "request.rate",
	"frequency":        "request.frequency",
	"type":             "request.type",
	"target-frequency": "request.target_frequency",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"log-source":       "log.source",
	"rscript":          "rscript.path",
	"rscript-timeout":  "rscript.timeout",
	"rscript-env":      "rscript.env",
	"wasm-memory":      "wasm.memory_limit_pages",
}

type loadConfig struct {
	flags   *pflag.FlagSet
	file    string
	rHome   string
	backend string
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// WithFile reads the given YAML file. A missing explicit file is an error.
func WithFile(path string) LoadOption {
	return func(c *loadConfig) {
		c.file = path
	}
}

// WithFlags binds changed flags from fs over every other source.
func WithFlags(fs *pflag.FlagSet) LoadOption {
	return func(c *loadConfig) {
		c.flags = fs
	}
}

// WithRHome sets the default runtime home, normally injected at build time.
// The R_HOME environment variable is used when it is empty.
func WithRHome(home string) LoadOption {
	return func(c *loadConfig) {
		c.rHome = home
	}
}

// WithDefaultBackend sets the backend used when no source names one.
// Callers pass BackendRscript when embedded R was not compiled in.
func WithDefaultBackend(name string) LoadOption {
	return func(c *loadConfig) {
		c.backend = name
	}
}

// Load builds and validates the configuration.
func Load(opts ...LoadOption) (*Config, error) {
	var lc loadConfig
	for _, opt := range opts {
		opt(&lc)
	}

	v := viper.New()
	setDefaults(v, lc)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if lc.file != "" {
		v.SetConfigFile(lc.file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", lc.file, err)
		}
	} else {
		v.SetConfigName("rateconv")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(home + "/rateconv")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stdErrors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if lc.flags != nil {
		for name, key := range flagKeys {
			if f := lc.flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize folds enumerated values to the lower-case form validation expects.
func (c *Config) normalize() {
	fold := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	c.Backend = fold(c.Backend)
	c.Output = fold(c.Output)
	c.Log.Level = fold(c.Log.Level)
	c.Log.Format = fold(c.Log.Format)
	c.Request.Type = fold(c.Request.Type)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// Dump renders the configuration as YAML.
func (c *Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}

func setDefaults(v *viper.Viper, lc loadConfig) {
	rHome := lc.rHome
	if rHome == "" {
		rHome = os.Getenv("R_HOME")
	}
	def := entities.DefaultRateRequest()

	v.SetDefault("r_home", rHome)
	backend := lc.backend
	if backend == "" {
		backend = BackendEmbedded
	}
	v.SetDefault("backend", backend)
	v.SetDefault("library", entities.FinancialMath)
	v.SetDefault("library_paths", []string{})
	v.SetDefault("output", "text")

	v.SetDefault("request.rate", def.Rate)
	v.SetDefault("request.frequency", def.Frequency)
	v.SetDefault("request.type", def.Type.String())
	v.SetDefault("request.target_frequency", def.TargetFrequency)

	v.SetDefault("rscript.path", "Rscript")
	v.SetDefault("rscript.timeout", 30*time.Second)
	v.SetDefault("rscript.env", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.source", false)

	v.SetDefault("wasm.memory_limit_pages", 0)
}
