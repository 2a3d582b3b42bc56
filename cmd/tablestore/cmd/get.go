package cmd

import (
	"github.com/spf13/cobra"
)

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <key>",
		Short: "Get the entry for a key",
		Long: `Get the entry stored under a key.

Example:
  tablestore get users 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTable(cmd, opts, args[0], func(t tableCommands, p *printer) error {
				return t.get(cmd.Context(), p, args[1])
			})
		},
	}
}

func newExistsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <table> <key>",
		Short: "Report whether a key holds an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTable(cmd, opts, args[0], func(t tableCommands, p *printer) error {
				return t.exists(cmd.Context(), p, args[1])
			})
		},
	}
}
