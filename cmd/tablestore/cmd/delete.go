package cmd

import (
	"github.com/spf13/cobra"
)

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <key>",
		Short: "Delete an entry",
		Long: `Delete the entry stored under a key. The key is never reissued.

Example:
  tablestore delete departments 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTable(cmd, opts, args[0], func(t tableCommands, p *printer) error {
				return t.remove(cmd.Context(), p, args[1])
			})
		},
	}
}
