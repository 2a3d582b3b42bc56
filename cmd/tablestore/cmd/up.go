/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/tablestore/pkg/config"
)

// upCmd represents the up command
func newUpCmd(opts *options) *cobra.Command {
	sf := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Bootstrap configuration if needed and start the server",
		Long: `Create a configuration file with a generated API key if none exists, then
start the REST API server. This is the recommended way to get tablestore running.

Examples:
  tablestore up
  tablestore up --data-dir ./mydata --port 9000`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !config.ConfigExists(opts.configPath) {
				cmd.Printf("First run detected. Bootstrapping tablestore...\n")
				if _, err := config.BootstrapConfig(opts.configPath, opts.backend, opts.dataDir); err != nil {
					return err
				}
				cmd.Printf("Configuration created at %s\n", opts.configPath)
			}
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return opts.open(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFrom(cmd)
			if err != nil {
				return err
			}
			return serve(cmd, container, sf)
		},
	}
	addServeFlags(cmd, sf)
	return cmd
}
