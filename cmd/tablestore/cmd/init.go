/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/tablestore/pkg/config"
)

// initCmd represents the init command
func newInitCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with a generated API key",
		Long: `Write a configuration file for the selected backend and generate the API
key the REST server will require.

Examples:
  tablestore init --data-dir ./data
  tablestore init --backend duckdb --config ./tablestore.yaml --force`,
		Args: cobra.NoArgs,
		// init runs before any backend exists.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ConfigExists(opts.configPath) && !force {
				cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", opts.configPath)
				return nil
			}
			cfg, err := config.BootstrapConfig(opts.configPath, opts.backend, opts.dataDir)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			cmd.Printf("Configuration written to %s\n", opts.configPath)
			cmd.Printf("Backend: %s\n", cfg.Backend)
			if cfg.Backend == config.BackendPebble {
				cmd.Printf("Data directory: %s\n", cfg.DataDir)
			}
			cmd.Printf("API key: %s\n", cfg.Security.APIKey)
			cmd.Printf("\nYou can now start the server with:\n  tablestore serve --config %s\n", opts.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	return cmd
}
