package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/budget-tools/rateconv/application/schema"
	"github.com/budget-tools/rateconv/config"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a rate conversion request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := schema.RateRequestSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newConfigCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(
				config.WithFile(*cfgFile),
				config.WithFlags(cmd.Flags()),
				config.WithRHome(defaultRHome),
				config.WithDefaultBackend(defaultBackend()),
			)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			data, err := cfg.Dump()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rateconv %s (commit %s)\n", version, commit)
		},
	}
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List interpreter backends",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			available := color.New(color.FgGreen).SprintFunc()
			missing := color.New(color.FgYellow).SprintFunc()

			r := backends()
			for _, name := range r.List() {
				b, _ := r.Get(name)
				status := available(fmt.Sprintf("%-16s", "available"))
				if !b.Available {
					status = missing(fmt.Sprintf("%-16s", "not compiled in"))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s %s\n", b.Name, status, b.Description)
			}
		},
	}
}
