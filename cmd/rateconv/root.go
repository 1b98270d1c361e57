package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/budget-tools/rateconv/config"
	"github.com/budget-tools/rateconv/domain/entities"
	applog "github.com/budget-tools/rateconv/log"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "rateconv",
		Short: "Convert interest rates between compounding conventions via R's FinancialMath",
		Long: `rateconv starts an embedded R runtime, attaches the FinancialMath package
and evaluates rate.conv(rate, frequency, type, target_frequency).

Backends:
  embedded - libR in-process (build with -tags rembed)
  rscript  - one Rscript process per call
  wasm     - FinancialMath compiled to WebAssembly, run with wazero`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd, cfgFile)
			if err != nil {
				return err
			}
			return runConversion(cmd.Context(), cfg, logger, cmd.OutOrStdout())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file path (default: ./rateconv.yaml)")
	flags.String("backend", defaultBackend(), "interpreter backend: embedded, rscript or wasm")
	flags.String("r-home", "", "R home directory exported as R_HOME")
	flags.String("library", entities.FinancialMath, "extension package providing rate.conv")
	flags.StringSlice("library-path", nil, "directories searched for <library>.wasm (wasm backend)")
	flags.String("rscript", "Rscript", "Rscript executable (rscript backend)")
	flags.Duration("rscript-timeout", 0, "timeout per Rscript run (rscript backend)")
	flags.StringSlice("rscript-env", nil, "extra KEY=VALUE variables for Rscript (rscript backend)")
	flags.String("output", "text", "result format: text or json")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.Bool("log-source", false, "include source file and line in log records")
	flags.Uint32("wasm-memory", 0, "guest memory limit in 64 KiB pages, 0 for the runtime default (wasm backend)")

	def := entities.DefaultRateRequest()
	root.Flags().Float64("rate", def.Rate, "rate to convert, as a fraction")
	root.Flags().Int("frequency", def.Frequency, "times per year the rate is convertible")
	root.Flags().String("type", def.Type.String(), "conversion type: interest, discount or force")
	root.Flags().Int("target-frequency", def.TargetFrequency, "times per year the result is convertible")

	root.AddCommand(newSchemaCmd(), newConfigCmd(&cfgFile), newBackendsCmd(), newVersionCmd())
	return root
}

func loadConfig(cmd *cobra.Command, cfgFile string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(
		config.WithFile(cfgFile),
		config.WithFlags(cmd.Flags()),
		config.WithRHome(defaultRHome),
		config.WithDefaultBackend(defaultBackend()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := applog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := applog.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	logger := applog.New(
		applog.WithLevel(level),
		applog.WithFormat(format),
		applog.WithSource(cfg.Log.Source),
		applog.WithWriter(cmd.ErrOrStderr()),
	)
	return cfg, logger, nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
