// Package memtable is the in-process Table: entries live in a slice in
// insertion order and every query runs the reference pipeline.
package memtable

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/table"
	"github.com/ssargent/tablestore/pkg/value"
)

type slot[E any] struct {
	id     uint64
	entry  E
	fields []value.Value
}

// Table stores entries in memory. It is safe for concurrent use.
type Table[E any, F record.Field] struct {
	schema *record.Schema[E, F]
	issuer table.Issuer[E]
	opts   table.Options

	mu    sync.RWMutex
	last  uint64
	slots []slot[E] // ascending id
}

// New returns an empty table for schema.
func New[E any, F record.Field](schema *record.Schema[E, F], opts table.Options) *Table[E, F] {
	return &Table[E, F]{
		schema: schema,
		issuer: table.NewIssuer[E](),
		opts:   opts.WithDefaults(),
	}
}

func (t *Table[E, F]) Schema() *record.Schema[E, F] { return t.schema }

func (t *Table[E, F]) Insert(_ context.Context, e E) table.Key[E] {
	fields, err := t.schema.Fields(e)
	if err != nil {
		t.opts.Logger.Error("insert rejected", slog.String("table", t.schema.Name()), slog.Any("error", err))
		return t.issuer.Invalid()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.last++
	t.slots = append(t.slots, slot[E]{id: t.last, entry: e, fields: fields})
	return t.issuer.Issue(t.last)
}

func (t *Table[E, F]) Lookup(_ context.Context, k table.Key[E]) (E, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.find(k)
	if !ok {
		var zero E
		return zero, false, nil
	}
	return t.slots[i].entry, true, nil
}

func (t *Table[E, F]) Update(_ context.Context, k table.Key[E], e E) error {
	fields, err := t.schema.Fields(e)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.find(k)
	if !ok {
		return fmt.Errorf("%w: %s", table.ErrKeyNotFound, k)
	}
	t.slots[i].entry = e
	t.slots[i].fields = fields
	return nil
}

func (t *Table[E, F]) Remove(_ context.Context, k table.Key[E]) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.find(k)
	if !ok {
		return fmt.Errorf("%w: %s", table.ErrKeyNotFound, k)
	}
	t.slots = slices.Delete(t.slots, i, i+1)
	return nil
}

func (t *Table[E, F]) Contains(_ context.Context, k table.Key[E]) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.find(k)
	return ok, nil
}

func (t *Table[E, F]) Search(_ context.Context, field F, v value.Value) ([]table.Row[E], error) {
	plan, err := query.Filter(t.schema, field, v)
	if err != nil {
		return nil, err
	}
	return t.run(plan), nil
}

func (t *Table[E, F]) Query(ctx context.Context, q query.Query[F], key *table.Key[E]) ([]table.Row[E], error) {
	plan, err := table.Prepare(q, key, t.schema, t.opts)
	if err != nil {
		return nil, err
	}
	if plan.Lookup {
		e, ok, err := t.Lookup(ctx, *key)
		if err != nil || !ok {
			return []table.Row[E]{}, err
		}
		return []table.Row[E]{{Key: *key, Entry: e}}, nil
	}
	return t.run(plan), nil
}

func (t *Table[E, F]) ParseKey(text string) (table.Key[E], error) {
	return t.issuer.Parse(text)
}

// Len returns the number of stored entries.
func (t *Table[E, F]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slots)
}

func (t *Table[E, F]) run(plan query.Plan[F]) []table.Row[E] {
	t.mu.RLock()
	matched := query.Run(plan, t.slots, func(s slot[E]) []value.Value { return s.fields })
	t.mu.RUnlock()

	rows := make([]table.Row[E], len(matched))
	for i, s := range matched {
		rows[i] = table.Row[E]{Key: t.issuer.Issue(s.id), Entry: s.entry}
	}
	return rows
}

// find must be called with mu held.
func (t *Table[E, F]) find(k table.Key[E]) (int, bool) {
	id, ok := t.issuer.Resolve(k)
	if !ok {
		return 0, false
	}
	return slices.BinarySearchFunc(t.slots, id, func(s slot[E], id uint64) int {
		return cmp.Compare(s.id, id)
	})
}
