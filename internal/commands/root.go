// Package commands implements the tsm command line.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/threestatement/internal/app"
	"github.com/example/threestatement/internal/buildinfo"
	"github.com/example/threestatement/internal/config"
)

const defaultDatabaseURL = "sqlite://tsm.db"

type globalOptions struct {
	databaseURL string
	configFile  string
	logLevel    string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "tsm",
		Short:   "Three-statement model: trial balances in, statements and forecasts out",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	defaultDB := os.Getenv("DATABASE_URL")
	if defaultDB == "" {
		defaultDB = defaultDatabaseURL
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.databaseURL, "database", defaultDB, "ledger database URL (sqlite://path or postgres://...)")
	pf.StringVar(&opts.configFile, "config", os.Getenv("CONFIG_FILE"), "YAML configuration file")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	rootCmd.AddCommand(
		newMigrateCommand(opts),
		newConfigCommand(),
		newCompanyCommand(opts),
		newImportCommand(opts),
		newPeriodsCommand(opts),
		newMappingsCommand(opts),
		newStatementsCommand(opts),
		newForecastCommand(opts),
	)

	return rootCmd
}

// open builds the application for one command run. The caller closes it.
func (o *globalOptions) open(cmd *cobra.Command) (*app.App, error) {
	level, err := config.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}

	file := config.DefaultFile()
	if o.configFile != "" {
		if file, err = config.LoadFile(o.configFile); err != nil {
			return nil, err
		}
	}
	cfg := &config.Config{
		Environment:  "local",
		DatabaseURL:  o.databaseURL,
		LogLevel:     o.logLevel,
		MaxBodyBytes: 1 << 20,
		ConfigFile:   o.configFile,
		File:         file,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a, err := app.Open(cmd.Context(), cfg, app.NewLogger(cmd.ErrOrStderr(), level))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", o.databaseURL, err)
	}
	return a, nil
}

func newMigrateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and seed the master chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			chart, err := a.Store.ListMasterAccounts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ledger ready (%s, %d master accounts)\n", a.Store.Dialect(), len(chart))
			return nil
		},
	}
}
