package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gorm.io/relmeta"
	"gorm.io/relmeta/dialect"
	"gorm.io/relmeta/manifest"
)

func newResolveCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the relations of a manifest",
		Long: `Resolve loads entity manifests, resolves their relations for the dialect and prints
the join columns, foreign keys, unique constraints and indexes of every entity.`,
		Example: `  relmeta resolve -f schema.yaml --dialect mariadb@10.11 --format json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			config, err := loadConfig(cmd.Flags(), dir, configFile)
			if err != nil {
				return err
			}
			return runResolve(cmd, config)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default ./relmeta.yaml)")
	flags.StringSliceP("file", "f", nil, "manifest files")
	flags.String("dialect", "mysql", fmt.Sprintf("database dialect %v, version after @", dialect.Names()))
	flags.String("format", "text", "output format: text, json or yaml")
	flags.String("log-level", "warn", "log level: silent, error, warn or info")
	flags.String("logger", "text", "logger: text, zap, zerolog or logrus")
	flags.Duration("slow-threshold", 200*time.Millisecond, "log entities resolved slower than this")
	flags.String("table-prefix", "", "prefix of table names")
	flags.Bool("singular-table", false, "use singular table names")
	flags.Bool("no-color", false, "disable colored output")
	return cmd
}

func runResolve(cmd *cobra.Command, config *Config) error {
	if config.NoColor {
		color.NoColor = true
	}

	dialector, err := dialect.Open(config.Dialect)
	if err != nil {
		return err
	}

	m, err := manifest.LoadFiles(cmd.Context(), config.Manifests...)
	if err != nil {
		return err
	}

	catalog, err := relmeta.Open(dialector,
		relmeta.WithNamingStrategy(config.NamingStrategy()),
		relmeta.WithLogger(config.NewLogger(cmd.ErrOrStderr())),
	)
	if err != nil {
		return err
	}

	schemas, err := m.Build(catalog.NamingStrategy, catalog.Dialector)
	if err != nil {
		return err
	}

	if err := catalog.Declare(schemas...); err != nil {
		return err
	}

	if err := catalog.Resolve(cmd.Context()); err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}

	return render(cmd.OutOrStdout(), config.Format, newReport(catalog.Schemas(), dialector))
}
