// Package kvtable is a persistent Table on a pebble LSM store.
//
// Each table keeps its rows under its schema name:
//
//	<name>/row/<id, 8 byte big-endian>  codec-encoded field values
//	<name>/seq                          last issued id
//
// Big-endian ids make a prefix scan return rows in insertion order, so
// queries run the reference pipeline over the scan. The sequence is written
// in the same batch as the row, so ids survive restarts and are never
// reused.
package kvtable

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/ssargent/tablestore/pkg/codec"
	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/table"
	"github.com/ssargent/tablestore/pkg/value"
)

// Table is a table.Table backed by a Store.
type Table[E any, F record.Field] struct {
	store  *Store
	schema *record.Schema[E, F]
	issuer table.Issuer[E]
	opts   table.Options
	codec  *codec.RowCodec

	rowPrefix []byte
	seqKey    []byte

	mu   sync.Mutex // serializes writes
	last uint64
}

// New opens the table for schema on store, resuming its id sequence.
func New[E any, F record.Field](store *Store, schema *record.Schema[E, F], opts table.Options) (*Table[E, F], error) {
	t := &Table[E, F]{
		store:     store,
		schema:    schema,
		issuer:    table.NewIssuer[E](),
		opts:      opts.WithDefaults(),
		codec:     codec.NewRowCodec(),
		rowPrefix: []byte(schema.Name() + "/row/"),
		seqKey:    []byte(schema.Name() + "/seq"),
	}

	data, ok, err := store.read(t.seqKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read sequence for %s: %v", table.ErrBackendFailure, schema.Name(), err)
	}
	if ok {
		if len(data) != 8 {
			return nil, fmt.Errorf("%w: sequence for %s is %d bytes", table.ErrBackendFailure, schema.Name(), len(data))
		}
		t.last = binary.BigEndian.Uint64(data)
	}
	return t, nil
}

func (t *Table[E, F]) Schema() *record.Schema[E, F] { return t.schema }

func (t *Table[E, F]) Insert(_ context.Context, e E) table.Key[E] {
	encoded, err := t.encode(e)
	if err != nil {
		t.opts.Logger.Error("insert rejected", slog.String("table", t.schema.Name()), slog.Any("error", err))
		return t.issuer.Invalid()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.last + 1
	if err := t.commitInsert(id, encoded); err != nil {
		t.opts.Logger.Error("insert failed", slog.String("table", t.schema.Name()), slog.Any("error", err))
		return t.issuer.Invalid()
	}
	t.last = id
	return t.issuer.Issue(id)
}

func (t *Table[E, F]) commitInsert(id uint64, encoded []byte) error {
	b := t.store.db.NewBatch()
	defer b.Close()
	if err := b.Set(t.rowKey(id), encoded, nil); err != nil {
		return err
	}
	if err := b.Set(t.seqKey, binary.BigEndian.AppendUint64(nil, id), nil); err != nil {
		return err
	}
	return b.Commit(pebble.NoSync)
}

func (t *Table[E, F]) Lookup(_ context.Context, k table.Key[E]) (E, bool, error) {
	var zero E
	id, ok := t.issuer.Resolve(k)
	if !ok {
		return zero, false, nil
	}
	data, ok, err := t.store.read(t.rowKey(id))
	if err != nil {
		return zero, false, fmt.Errorf("%w: %v", table.ErrBackendFailure, err)
	}
	if !ok {
		return zero, false, nil
	}
	e, err := t.decode(data)
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

func (t *Table[E, F]) Update(_ context.Context, k table.Key[E], e E) error {
	encoded, err := t.encode(e)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	key, err := t.existing(k)
	if err != nil {
		return err
	}
	if err := t.store.db.Set(key, encoded, pebble.NoSync); err != nil {
		return fmt.Errorf("%w: update %s: %v", table.ErrBackendFailure, k, err)
	}
	return nil
}

func (t *Table[E, F]) Remove(_ context.Context, k table.Key[E]) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	key, err := t.existing(k)
	if err != nil {
		return err
	}
	if err := t.store.db.Delete(key, pebble.NoSync); err != nil {
		return fmt.Errorf("%w: remove %s: %v", table.ErrBackendFailure, k, err)
	}
	return nil
}

func (t *Table[E, F]) Contains(_ context.Context, k table.Key[E]) (bool, error) {
	id, ok := t.issuer.Resolve(k)
	if !ok {
		return false, nil
	}
	ok, err := t.store.has(t.rowKey(id))
	if err != nil {
		return false, fmt.Errorf("%w: %v", table.ErrBackendFailure, err)
	}
	return ok, nil
}

func (t *Table[E, F]) Search(_ context.Context, field F, v value.Value) ([]table.Row[E], error) {
	plan, err := query.Filter(t.schema, field, v)
	if err != nil {
		return nil, err
	}
	return t.run(plan)
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
	return t.run(plan)
}

func (t *Table[E, F]) ParseKey(text string) (table.Key[E], error) {
	return t.issuer.Parse(text)
}

type scanned struct {
	id     uint64
	fields []value.Value
}

func (t *Table[E, F]) run(plan query.Plan[F]) ([]table.Row[E], error) {
	var rows []scanned
	err := t.store.scan(t.rowPrefix, upperBound(t.rowPrefix), func(key, data []byte) error {
		if len(key) != len(t.rowPrefix)+8 {
			return fmt.Errorf("%w: malformed row key %q", table.ErrBackendFailure, key)
		}
		fields, err := t.codec.Decode(data)
		if err != nil {
			return fmt.Errorf("%w: %w", table.ErrBackendFailure, err)
		}
		rows = append(rows, scanned{id: binary.BigEndian.Uint64(key[len(t.rowPrefix):]), fields: fields})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", t.schema.Name(), err)
	}

	matched := query.Run(plan, rows, func(s scanned) []value.Value { return s.fields })
	out := make([]table.Row[E], len(matched))
	for i, s := range matched {
		e, err := t.schema.FromFields(s.fields)
		if err != nil {
			return nil, err
		}
		out[i] = table.Row[E]{Key: t.issuer.Issue(s.id), Entry: e}
	}
	return out, nil
}

// existing resolves k to the key of a stored row. Callers hold mu.
func (t *Table[E, F]) existing(k table.Key[E]) ([]byte, error) {
	id, ok := t.issuer.Resolve(k)
	if !ok {
		return nil, fmt.Errorf("%w: %s", table.ErrKeyNotFound, k)
	}
	key := t.rowKey(id)
	ok, err := t.store.has(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", table.ErrBackendFailure, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", table.ErrKeyNotFound, k)
	}
	return key, nil
}

func (t *Table[E, F]) rowKey(id uint64) []byte {
	return binary.BigEndian.AppendUint64(append([]byte(nil), t.rowPrefix...), id)
}

func (t *Table[E, F]) encode(e E) ([]byte, error) {
	fields, err := t.schema.Fields(e)
	if err != nil {
		return nil, err
	}
	return t.codec.Encode(fields)
}

func (t *Table[E, F]) decode(data []byte) (E, error) {
	fields, err := t.codec.Decode(data)
	if err != nil {
		var zero E
		return zero, fmt.Errorf("%w: %w", table.ErrBackendFailure, err)
	}
	return t.schema.FromFields(fields)
}

// upperBound returns the smallest key greater than every key with prefix.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
