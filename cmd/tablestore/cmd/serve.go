/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/tablestore/pkg/config"
	"github.com/ssargent/tablestore/pkg/di"
)

type serveFlags struct {
	port   int
	bind   string
	apiKey string
}

// serveCmd represents the serve command
func newServeCmd() *cobra.Command {
	sf := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the REST API server over the configured backend.

Every route under /api/v1 requires the X-API-Key header. Prometheus metrics are
served unauthenticated at /metrics.

Examples:
  tablestore serve --api-key=mysecretkey --port=8080
  tablestore serve --backend duckdb --dsn ./directory.duckdb`,
		Args: cobra.NoArgs,
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

func addServeFlags(cmd *cobra.Command, sf *serveFlags) {
	cmd.Flags().IntVarP(&sf.port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().StringVar(&sf.bind, "bind", "127.0.0.1", "Address to bind server to")
	cmd.Flags().String("api-key", "", "API key for client authentication (default from config)")
}

func serve(cmd *cobra.Command, container *di.Container, sf *serveFlags) error {
	cfg := container.Config()
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = sf.port
	}
	if flags.Changed("bind") {
		cfg.Bind = sf.bind
	}

	apiKey, _ := flags.GetString("api-key")
	if apiKey == "" {
		apiKey = cfg.Security.APIKey
	}
	if apiKey == "" || apiKey == "auto" {
		generated, err := config.GenerateSecureKey(32)
		if err != nil {
			return err
		}
		apiKey = generated
		cmd.Printf("Generated API key for this session: %s\n", apiKey)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Starting tablestore REST API on %s:%d (%s backend)\n", cfg.Bind, cfg.Port, cfg.Backend)
	cmd.Printf("Metrics available at: http://%s:%d/metrics\n", cfg.Bind, cfg.Port)
	return container.Server(apiKey).ListenAndServe(ctx)
}
