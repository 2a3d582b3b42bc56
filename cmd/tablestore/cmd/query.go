package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/tablestore/pkg/query"
)

func newQueryCmd(opts *options) *cobra.Command {
	var (
		req query.Request
		key string
	)
	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Run a filtered, sorted and paged query",
		Long: `Run a query against a table. Results are filtered, sorted by --sort with
ties kept in insertion order, then cut to page --page of --size rows. Page sizes
above the configured maximum are clamped.

Examples:
  tablestore query users --sort lastname --size 10
  tablestore query users --type partial_search --field email --value @students --direction desc
  tablestore query users --type multi_search --field active --value true --field gpa --value 3.5
  tablestore query users --type lookup --key 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTable(cmd, opts, args[0], func(t tableCommands, p *printer) error {
				return t.query(cmd.Context(), p, req, key)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Type, "type", "t", "get_all", "query type (get_all, search, partial_search, multi_search or lookup)")
	flags.StringArrayVar(&req.Fields, "field", nil, "field to match, repeatable")
	flags.StringArrayVar(&req.Values, "value", nil, "value to match, repeatable and paired with --field")
	flags.StringVarP(&req.Sort, "sort", "s", "", "sort field (default first field)")
	flags.StringVar(&req.Direction, "direction", "asc", "sort direction (asc or desc)")
	flags.IntVarP(&req.Size, "size", "n", query.DefaultMaxPageSize, "page size")
	flags.IntVarP(&req.Number, "page", "p", 1, "page number, starting at 1")
	flags.StringVarP(&key, "key", "k", "", "key for a lookup query")
	return cmd
}

func newSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <table> <field> <value>",
		Short: "List every entry whose field equals a value",
		Long: `List every entry whose field equals a value, in insertion order and
without paging.

Example:
  tablestore search users active true`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTable(cmd, opts, args[0], func(t tableCommands, p *printer) error {
				return t.search(cmd.Context(), p, args[1], args[2])
			})
		},
	}
}

func newTablesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFrom(cmd)
			if err != nil {
				return err
			}
			tables := tablesOf(container)
			infos := make([]tableInfo, 0, len(tables))
			for _, name := range tableNames(tables) {
				infos = append(infos, tables[name].info())
			}
			p := &printer{w: cmd.OutOrStdout(), format: opts.format}
			return p.describe(infos)
		},
	}
}
