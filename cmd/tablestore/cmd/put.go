package cmd

import (
	"github.com/spf13/cobra"
)

func newPutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "put <table> <field=value>...",
		Short: "Insert an entry",
		Long: `Insert an entry into a table and print its new key. Fields left out keep
their zero value.

Example:
  tablestore put departments name="Mechanical Engineering" abbreviation=ME
  tablestore put users firstname=Ada lastname=Lovelace bannerID=916000001 gpa=4 active=true`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTable(cmd, opts, args[0], func(t tableCommands, p *printer) error {
				return t.put(cmd.Context(), p, args[1:])
			})
		},
	}
}

// withTable resolves the named table from the command's container.
func withTable(cmd *cobra.Command, opts *options, name string, fn func(tableCommands, *printer) error) error {
	container, err := containerFrom(cmd)
	if err != nil {
		return err
	}
	t, err := lookupTable(container, name)
	if err != nil {
		return err
	}
	return fn(t, &printer{w: cmd.OutOrStdout(), format: opts.format})
}
