package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ssargent/tablestore/pkg/di"
	"github.com/ssargent/tablestore/pkg/directory"
	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/table"
	"github.com/ssargent/tablestore/pkg/value"
)

// tableCommands runs CLI operations against one table without the caller
// knowing its entry type.
type tableCommands interface {
	info() tableInfo
	put(ctx context.Context, p *printer, assignments []string) error
	get(ctx context.Context, p *printer, key string) error
	exists(ctx context.Context, p *printer, key string) error
	update(ctx context.Context, p *printer, key string, assignments []string) error
	remove(ctx context.Context, p *printer, key string) error
	search(ctx context.Context, p *printer, field, text string) error
	query(ctx context.Context, p *printer, req query.Request, key string) error
}

type tableCLI[E any, F record.Field] struct {
	name  string
	table table.Table[E, F]
}

func tablesOf(c *di.Container) map[string]tableCommands {
	return map[string]tableCommands{
		"departments": &tableCLI[directory.Department, directory.DepartmentField]{name: "departments", table: c.Departments()},
		"users":       &tableCLI[directory.User, directory.UserField]{name: "users", table: c.Users()},
	}
}

// tableNames lists the tables in a stable order.
func tableNames(tables map[string]tableCommands) []string {
	names := make([]string, 0, len(tables))
	for n := range tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookupTable(c *di.Container, name string) (tableCommands, error) {
	tables := tablesOf(c)
	if t, ok := tables[name]; ok {
		return t, nil
	}
	names := tableNames(tables)
	return nil, fmt.Errorf("unknown table %q (have %s)", name, strings.Join(names, ", "))
}

func (c *tableCLI[E, F]) info() tableInfo {
	schema := c.table.Schema()
	info := tableInfo{Table: c.name, Entity: schema.Name()}
	for _, col := range schema.Columns() {
		info.Columns = append(info.Columns, column{Name: col.Name.String(), Kind: col.Kind.String()})
	}
	return info
}

func (c *tableCLI[E, F]) put(ctx context.Context, p *printer, assignments []string) error {
	e, err := c.assign(*new(E), assignments)
	if err != nil {
		return err
	}
	k := c.table.Insert(ctx, e)
	if !k.Valid() {
		return fmt.Errorf("insert into %s failed, see log for details", c.name)
	}
	return printRows(p, c.table.Schema(), []table.Row[E]{{Key: k, Entry: e}})
}

func (c *tableCLI[E, F]) get(ctx context.Context, p *printer, text string) error {
	k, err := c.table.ParseKey(text)
	if err != nil {
		return err
	}
	e, ok, err := c.table.Lookup(ctx, k)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w: %s", c.name, table.ErrKeyNotFound, text)
	}
	return printRows(p, c.table.Schema(), []table.Row[E]{{Key: k, Entry: e}})
}

func (c *tableCLI[E, F]) exists(ctx context.Context, p *printer, text string) error {
	k, err := c.table.ParseKey(text)
	if err != nil {
		return p.line("false")
	}
	ok, err := c.table.Contains(ctx, k)
	if err != nil {
		return err
	}
	return p.line(fmt.Sprint(ok))
}

// update applies assignments on top of the stored entry.
func (c *tableCLI[E, F]) update(ctx context.Context, p *printer, text string, assignments []string) error {
	k, err := c.table.ParseKey(text)
	if err != nil {
		return err
	}
	e, ok, err := c.table.Lookup(ctx, k)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w: %s", c.name, table.ErrKeyNotFound, text)
	}
	if e, err = c.assign(e, assignments); err != nil {
		return err
	}
	if err := c.table.Update(ctx, k, e); err != nil {
		return err
	}
	return printRows(p, c.table.Schema(), []table.Row[E]{{Key: k, Entry: e}})
}

func (c *tableCLI[E, F]) remove(ctx context.Context, p *printer, text string) error {
	k, err := c.table.ParseKey(text)
	if err != nil {
		return err
	}
	if err := c.table.Remove(ctx, k); err != nil {
		return err
	}
	return p.line(fmt.Sprintf("Deleted %s %s", c.name, k))
}

func (c *tableCLI[E, F]) search(ctx context.Context, p *printer, field, text string) error {
	schema := c.table.Schema()
	f, v, err := parseAssignment(schema, field+"="+text)
	if err != nil {
		return err
	}
	rows, err := c.table.Search(ctx, f, v)
	if err != nil {
		return err
	}
	return printRows(p, schema, rows)
}

func (c *tableCLI[E, F]) query(ctx context.Context, p *printer, req query.Request, text string) error {
	schema := c.table.Schema()
	q, err := query.ParseRequest(schema, req)
	if err != nil {
		return err
	}
	var key *table.Key[E]
	if text != "" {
		k, err := c.table.ParseKey(text)
		if err != nil {
			if query.IsLookup[F](q) {
				return printRows[E](p, schema, nil)
			}
			return err
		}
		key = &k
	}
	rows, err := c.table.Query(ctx, q, key)
	if err != nil {
		return err
	}
	return printRows(p, schema, rows)
}

func (c *tableCLI[E, F]) assign(e E, assignments []string) (E, error) {
	schema := c.table.Schema()
	for _, a := range assignments {
		field, v, err := parseAssignment(schema, a)
		if err != nil {
			return e, err
		}
		if e, err = schema.With(e, field, v); err != nil {
			return e, err
		}
	}
	return e, nil
}

// parseAssignment parses field=value against schema.
func parseAssignment[E any, F record.Field](schema *record.Schema[E, F], text string) (F, value.Value, error) {
	var zero F
	name, raw, ok := strings.Cut(text, "=")
	if !ok {
		return zero, value.Value{}, fmt.Errorf("expected field=value, got %q", text)
	}
	field, err := schema.ParseField(name)
	if err != nil {
		return zero, value.Value{}, err
	}
	kind, err := schema.Kind(field)
	if err != nil {
		return zero, value.Value{}, err
	}
	v, err := value.Parse(kind, raw)
	if err != nil {
		return zero, value.Value{}, fmt.Errorf("%s: %w", name, err)
	}
	return field, v, nil
}
