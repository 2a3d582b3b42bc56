// Package sqltable is the relational Table. Every operation becomes
// structured relational commands executed on one backend session, and rows
// come back through the entry schema.
//
// The persisted layout is one table named after the schema: an id column
// followed by one column per field in declaration order. Ids are assigned
// by the database and never reused.
package sqltable

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/relational"
	"github.com/ssargent/tablestore/pkg/table"
	"github.com/ssargent/tablestore/pkg/value"
)

// IDColumn names the identifier column.
const IDColumn = "id"

// Table is a table.Table over a relational.Backend.
type Table[E any, F record.Field] struct {
	backend relational.Backend
	schema  *record.Schema[E, F]
	issuer  table.Issuer[E]
	opts    table.Options

	columns []string
	kinds   []value.Kind
}

// New returns a table for schema on backend. Call EnsureSchema before first
// use against an empty database.
func New[E any, F record.Field](backend relational.Backend, schema *record.Schema[E, F], opts table.Options) *Table[E, F] {
	t := &Table[E, F]{
		backend: backend,
		schema:  schema,
		issuer:  table.NewIssuer[E](),
		opts:    opts.WithDefaults(),
	}
	for _, c := range schema.Columns() {
		t.columns = append(t.columns, c.Name.String())
		t.kinds = append(t.kinds, c.Kind)
	}
	return t
}

// EnsureSchema creates the backing table if it does not exist. An existing
// table is never altered.
func (t *Table[E, F]) EnsureSchema(ctx context.Context) error {
	cmd := relational.CreateTable{Table: t.schema.Name(), ID: IDColumn}
	for i, name := range t.columns {
		cmd.Columns = append(cmd.Columns, relational.Column{Name: name, Kind: t.kinds[i]})
	}
	_, err := t.execute(ctx, cmd)
	return err
}

func (t *Table[E, F]) Schema() *record.Schema[E, F] { return t.schema }

func (t *Table[E, F]) Insert(ctx context.Context, e E) table.Key[E] {
	k, err := t.insert(ctx, e)
	if err != nil {
		t.opts.Logger.Error("insert failed", slog.String("table", t.schema.Name()), slog.Any("error", err))
		return t.issuer.Invalid()
	}
	return k
}

func (t *Table[E, F]) insert(ctx context.Context, e E) (table.Key[E], error) {
	fields, err := t.schema.Fields(e)
	if err != nil {
		return table.Key[E]{}, err
	}

	conn, err := t.backend.Conn(ctx)
	if err != nil {
		return table.Key[E]{}, fmt.Errorf("%w: %w", table.ErrBackendFailure, err)
	}
	defer conn.Close()

	cmd := relational.Insert{Table: t.schema.Name(), ID: IDColumn, Columns: t.columns, Values: primitives(fields)}
	if _, err := t.run(ctx, conn, cmd); err != nil {
		return table.Key[E]{}, err
	}
	id, err := conn.LastInsertID(ctx)
	if err != nil {
		return table.Key[E]{}, fmt.Errorf("%w: last insert id: %w", table.ErrBackendFailure, err)
	}
	if id <= 0 {
		return table.Key[E]{}, fmt.Errorf("%w: backend issued id %d", table.ErrBackendFailure, id)
	}
	return t.issuer.Issue(uint64(id)), nil
}

func (t *Table[E, F]) Lookup(ctx context.Context, k table.Key[E]) (E, bool, error) {
	var zero E
	id, ok := t.issuer.Resolve(k)
	if !ok {
		return zero, false, nil
	}
	rs, err := t.execute(ctx, relational.Select{
		Table:   t.schema.Name(),
		Columns: append([]string{IDColumn}, t.columns...),
		Where:   byID(id),
		Limit:   -1,
	})
	if err != nil {
		return zero, false, err
	}
	if len(rs.Rows) == 0 {
		return zero, false, nil
	}
	row, err := t.decode(rs.Rows[0])
	if err != nil {
		return zero, false, err
	}
	return row.Entry, true, nil
}

func (t *Table[E, F]) Update(ctx context.Context, k table.Key[E], e E) error {
	fields, err := t.schema.Fields(e)
	if err != nil {
		return err
	}
	return t.mutate(ctx, k, relational.Update{
		Table:   t.schema.Name(),
		Columns: t.columns,
		Values:  primitives(fields),
	})
}

func (t *Table[E, F]) Remove(ctx context.Context, k table.Key[E]) error {
	return t.mutate(ctx, k, relational.Delete{Table: t.schema.Name()})
}

// mutate checks k exists, then applies cmd to its row on the same session.
// The check and the mutation are not atomic.
func (t *Table[E, F]) mutate(ctx context.Context, k table.Key[E], cmd relational.Command) error {
	id, ok := t.issuer.Resolve(k)
	if !ok {
		return fmt.Errorf("%w: %s", table.ErrKeyNotFound, k)
	}

	conn, err := t.backend.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", table.ErrBackendFailure, err)
	}
	defer conn.Close()

	exists, err := t.exists(ctx, conn, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", table.ErrKeyNotFound, k)
	}

	switch c := cmd.(type) {
	case relational.Update:
		c.Where = byID(id)
		cmd = c
	case relational.Delete:
		c.Where = byID(id)
		cmd = c
	}
	_, err = t.run(ctx, conn, cmd)
	return err
}

func (t *Table[E, F]) Contains(ctx context.Context, k table.Key[E]) (bool, error) {
	id, ok := t.issuer.Resolve(k)
	if !ok {
		return false, nil
	}
	conn, err := t.backend.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", table.ErrBackendFailure, err)
	}
	defer conn.Close()
	return t.exists(ctx, conn, id)
}

func (t *Table[E, F]) Search(ctx context.Context, field F, v value.Value) ([]table.Row[E], error) {
	plan, err := query.Filter(t.schema, field, v)
	if err != nil {
		return nil, err
	}
	return t.selectPlan(ctx, plan)
}

func (t *Table[E, F]) Query(ctx context.Context, q query.Query[F], key *table.Key[E]) ([]table.Row[E], error) {
	plan, err := table.Prepare(q, key, t.schema, t.opts)
	if err != nil {
		return nil, err
	}
	if plan.Lookup {
		e, ok, err := t.Lookup(ctx, *key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []table.Row[E]{}, nil
		}
		return []table.Row[E]{{Key: *key, Entry: e}}, nil
	}
	return t.selectPlan(ctx, plan)
}

func (t *Table[E, F]) ParseKey(text string) (table.Key[E], error) {
	return t.issuer.Parse(text)
}

// Translate renders plan as the single Select that executes it.
func Translate[F record.Field](name string, columns []string, plan query.Plan[F]) relational.Select {
	sel := relational.Select{
		Table:   name,
		Columns: append([]string{IDColumn}, columns...),
		Limit:   -1,
	}
	for _, c := range plan.Conditions {
		op := relational.OpEqual
		if c.Op == query.OpContains {
			op = relational.OpContains
		}
		sel.Where = append(sel.Where, relational.Predicate{Column: c.Field.String(), Op: op, Value: c.Value.Primitive()})
	}
	if plan.Sorted {
		sel.OrderBy = append(sel.OrderBy, relational.Order{Column: plan.SortField.String(), Desc: plan.Direction == query.Desc})
	}
	// ties, and unsorted searches, fall back to insertion order
	sel.OrderBy = append(sel.OrderBy, relational.Order{Column: IDColumn})
	if plan.Paged {
		sel.Limit = plan.Limit
		sel.Offset = plan.Offset
	}
	return sel
}

func (t *Table[E, F]) selectPlan(ctx context.Context, plan query.Plan[F]) ([]table.Row[E], error) {
	rs, err := t.execute(ctx, Translate(t.schema.Name(), t.columns, plan))
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row[E], 0, len(rs.Rows))
	for _, raw := range rs.Rows {
		row, err := t.decode(raw)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *Table[E, F]) decode(raw []any) (table.Row[E], error) {
	if len(raw) != len(t.columns)+1 {
		return table.Row[E]{}, fmt.Errorf("%w: %s row has %d columns, want %d", table.ErrSchemaMismatch, t.schema.Name(), len(raw), len(t.columns)+1)
	}
	id, err := relational.ID(raw[0])
	if err != nil || id <= 0 {
		return table.Row[E]{}, fmt.Errorf("%w: %s row id: %v", table.ErrSchemaMismatch, t.schema.Name(), raw[0])
	}
	fields := make([]value.Value, len(t.columns))
	for i, kind := range t.kinds {
		v, err := value.FromPrimitive(raw[i+1], kind)
		if err != nil {
			return table.Row[E]{}, fmt.Errorf("%w: %s.%s: %v", table.ErrSchemaMismatch, t.schema.Name(), t.columns[i], err)
		}
		fields[i] = v
	}
	e, err := t.schema.FromFields(fields)
	if err != nil {
		return table.Row[E]{}, err
	}
	return table.Row[E]{Key: t.issuer.Issue(uint64(id)), Entry: e}, nil
}

func (t *Table[E, F]) exists(ctx context.Context, conn relational.Conn, id uint64) (bool, error) {
	rs, err := t.run(ctx, conn, relational.Exists{Table: t.schema.Name(), Where: byID(id)})
	if err != nil {
		return false, err
	}
	return len(rs.Rows) > 0, nil
}

// execute runs cmd on a fresh session.
func (t *Table[E, F]) execute(ctx context.Context, cmd relational.Command) (relational.RowSet, error) {
	conn, err := t.backend.Conn(ctx)
	if err != nil {
		return relational.RowSet{}, fmt.Errorf("%w: %w", table.ErrBackendFailure, err)
	}
	defer conn.Close()
	return t.run(ctx, conn, cmd)
}

func (t *Table[E, F]) run(ctx context.Context, conn relational.Conn, cmd relational.Command) (relational.RowSet, error) {
	t.opts.Logger.Debug("execute", slog.String("table", t.schema.Name()), slog.String("command", fmt.Sprintf("%T", cmd)))
	rs, err := conn.Execute(ctx, cmd)
	if err != nil {
		return relational.RowSet{}, fmt.Errorf("%w: %s: %w", table.ErrBackendFailure, t.schema.Name(), err)
	}
	return rs, nil
}

func byID(id uint64) []relational.Predicate {
	return []relational.Predicate{{Column: IDColumn, Value: int64(id)}}
}

func primitives(values []value.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.Primitive()
	}
	return out
}
