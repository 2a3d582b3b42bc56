/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/tablestore/pkg/config"
	"github.com/ssargent/tablestore/pkg/di"
	"github.com/ssargent/tablestore/pkg/logging"
)

type containerKey struct{}

// options are the global flags shared by every subcommand.
type options struct {
	configPath  string
	backend     string
	dataDir     string
	dsn         string
	logLevel    string
	maxPageSize int
	format      string

	container *di.Container
}

// NewRootCommand builds the tablestore command tree. The returned release
// func closes the backend opened while running it; it is safe to call when no
// backend was opened.
func NewRootCommand() (*cobra.Command, func() error) {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tablestore",
		Short: "tablestore - keyed record tables",
		Long: `tablestore keeps departments and users in keyed tables backed by
memory, pebble, duckdb or mysql, and answers filtered, sorted and paged queries
over them from the command line or a REST API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return opts.open(cmd, cfg)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", config.GetDefaultConfigPath(), "path to config file")
	flags.StringVarP(&opts.backend, "backend", "b", "", "storage backend (memory, pebble, duckdb or mysql)")
	flags.StringVarP(&opts.dataDir, "data-dir", "d", "", "data directory for the pebble backend")
	flags.StringVar(&opts.dsn, "dsn", "", "data source name for the duckdb and mysql backends")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn or error)")
	flags.IntVar(&opts.maxPageSize, "max-page-size", 0, "largest page a query may return")
	flags.StringVarP(&opts.format, "format", "o", "table", "output format (table or json)")

	rootCmd.AddCommand(
		newInitCmd(opts),
		newUpCmd(opts),
		newServeCmd(),
		newTablesCmd(opts),
		newPutCmd(opts),
		newGetCmd(opts),
		newExistsCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newSearchCmd(opts),
		newQueryCmd(opts),
	)
	return rootCmd, opts.close
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	rootCmd, release := NewRootCommand()
	err := rootCmd.Execute()
	if cerr := release(); cerr != nil && err == nil {
		err = cerr
		rootCmd.PrintErrln("Error:", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// load reads the config file when present, falls back to defaults, then
// applies any flags set on the command line.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if config.ConfigExists(o.configPath) {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if flags.Changed("dsn") {
		cfg.DSN = o.dsn
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("max-page-size") {
		cfg.Query.MaxPageSize = o.maxPageSize
	}
	if o.format != "table" && o.format != "json" {
		return nil, fmt.Errorf("unknown output format %q", o.format)
	}
	return cfg, nil
}

func (o *options) open(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := logging.Stderr(cfg.Logging.Level)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	container, err := di.NewContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	o.container = container
	// Store in command context
	cmd.SetContext(context.WithValue(ctx, containerKey{}, container))
	return nil
}

// close releases the backend. Cobra skips post-run hooks when a command
// fails, so Execute calls it again afterwards.
func (o *options) close() error {
	if o.container == nil {
		return nil
	}
	err := o.container.Close()
	o.container = nil
	return err
}

func containerFrom(cmd *cobra.Command) (*di.Container, error) {
	c, ok := cmd.Context().Value(containerKey{}).(*di.Container)
	if !ok {
		return nil, errors.New("container not found in context")
	}
	return c, nil
}
