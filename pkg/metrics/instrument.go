package metrics

import (
	"context"
	"time"

	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/table"
	"github.com/ssargent/tablestore/pkg/value"
)

// Instrumented is a table.Table that records every operation.
type Instrumented[E any, F record.Field] struct {
	table.Table[E, F]
	m    *Metrics
	name string
}

// Instrument wraps t so each operation is counted and timed under the
// schema name.
func Instrument[E any, F record.Field](t table.Table[E, F], m *Metrics) *Instrumented[E, F] {
	return &Instrumented[E, F]{Table: t, m: m, name: t.Schema().Name()}
}

func (i *Instrumented[E, F]) record(op string, start time.Time, err error) {
	i.m.RecordTableOperation(i.name, op, err == nil, time.Since(start))
}

func (i *Instrumented[E, F]) Insert(ctx context.Context, e E) table.Key[E] {
	start := time.Now()
	k := i.Table.Insert(ctx, e)
	i.m.RecordTableOperation(i.name, "insert", k.Valid(), time.Since(start))
	return k
}

func (i *Instrumented[E, F]) Lookup(ctx context.Context, k table.Key[E]) (E, bool, error) {
	start := time.Now()
	e, ok, err := i.Table.Lookup(ctx, k)
	i.record("lookup", start, err)
	return e, ok, err
}

func (i *Instrumented[E, F]) Update(ctx context.Context, k table.Key[E], e E) error {
	start := time.Now()
	err := i.Table.Update(ctx, k, e)
	i.record("update", start, err)
	return err
}

func (i *Instrumented[E, F]) Remove(ctx context.Context, k table.Key[E]) error {
	start := time.Now()
	err := i.Table.Remove(ctx, k)
	i.record("remove", start, err)
	return err
}

func (i *Instrumented[E, F]) Contains(ctx context.Context, k table.Key[E]) (bool, error) {
	start := time.Now()
	ok, err := i.Table.Contains(ctx, k)
	i.record("contains", start, err)
	return ok, err
}

func (i *Instrumented[E, F]) Search(ctx context.Context, field F, v value.Value) ([]table.Row[E], error) {
	start := time.Now()
	rows, err := i.Table.Search(ctx, field, v)
	i.record("search", start, err)
	if err == nil {
		i.m.RecordRows(i.name, "search", len(rows))
	}
	return rows, err
}

func (i *Instrumented[E, F]) Query(ctx context.Context, q query.Query[F], key *table.Key[E]) ([]table.Row[E], error) {
	op := "query"
	if q != nil {
		op = q.Name()
	}
	start := time.Now()
	rows, err := i.Table.Query(ctx, q, key)
	i.record(op, start, err)
	if err == nil {
		i.m.RecordRows(i.name, op, len(rows))
	}
	return rows, err
}
