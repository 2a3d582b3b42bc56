package cmd

import (
	"github.com/spf13/cobra"
)

func newUpdateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <key> <field=value>...",
		Short: "Change fields of an existing entry",
		Long: `Change fields of the entry stored under a key. Fields not named keep their
current value.

Example:
  tablestore update users 3 gpa=3.9 active=false`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTable(cmd, opts, args[0], func(t tableCommands, p *printer) error {
				return t.update(cmd.Context(), p, args[1], args[2:])
			})
		},
	}
}
