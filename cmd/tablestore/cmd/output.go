package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ssargent/tablestore/pkg/api"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/table"
)

// printer writes command results as a table or as JSON.
type printer struct {
	w      io.Writer
	format string
}

func (p *printer) json() bool { return p.format == "json" }

func (p *printer) line(s string) error {
	if p.json() {
		return p.encode(map[string]string{"result": s})
	}
	_, err := fmt.Fprintln(p.w, s)
	return err
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRows displays keyed entries, one row per entry with a column per field.
func printRows[E any, F record.Field](p *printer, schema *record.Schema[E, F], rows []table.Row[E]) error {
	if p.json() {
		out := make([]api.RowResponse[E], 0, len(rows))
		for _, r := range rows {
			out = append(out, api.RowResponse[E]{Key: r.Key.String(), Entry: r.Entry})
		}
		return p.encode(out)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.w, "No rows found.")
		return err
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	header := []string{"KEY"}
	for _, f := range schema.FieldNames() {
		header = append(header, strings.ToUpper(f.String()))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, r := range rows {
		fields, err := schema.Fields(r.Entry)
		if err != nil {
			return err
		}
		cells := []string{r.Key.String()}
		for _, v := range fields {
			cells = append(cells, v.String())
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

// column describes one schema column for display.
type column struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type tableInfo struct {
	Table   string   `json:"table"`
	Entity  string   `json:"entity"`
	Columns []column `json:"columns"`
}

// describe displays table schemas.
func (p *printer) describe(tables []tableInfo) error {
	if p.json() {
		return p.encode(tables)
	}
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tENTITY\tFIELD\tKIND")
	for _, t := range tables {
		for _, c := range t.Columns {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Table, t.Entity, c.Name, c.Kind)
		}
	}
	return w.Flush()
}
