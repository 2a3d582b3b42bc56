package table

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/value"
)

// Row pairs an entry with its key.
type Row[E any] struct {
	Key   Key[E]
	Entry E
}

// Table is a keyed collection of entries of type E with fields F.
type Table[E any, F record.Field] interface {
	// Schema returns the entry type's schema.
	Schema() *record.Schema[E, F]

	// Insert stores e under a fresh key. On storage failure the returned key
	// is invalid and the failure is logged.
	Insert(ctx context.Context, e E) Key[E]

	// Lookup returns the entry for k. ok is false when k does not resolve.
	Lookup(ctx context.Context, k Key[E]) (e E, ok bool, err error)

	// Update replaces the entry for k.
	Update(ctx context.Context, k Key[E], e E) error

	// Remove deletes the entry for k. The key is never reissued.
	Remove(ctx context.Context, k Key[E]) error

	// Contains reports whether k resolves to an entry.
	Contains(ctx context.Context, k Key[E]) (bool, error)

	// Search returns every entry whose field equals v, in insertion order.
	Search(ctx context.Context, field F, v value.Value) ([]Row[E], error)

	// Query runs q. key must be set for Lookup and nil otherwise.
	Query(ctx context.Context, q query.Query[F], key *Key[E]) ([]Row[E], error)

	// ParseKey binds the textual form of a key to this table.
	ParseKey(text string) (Key[E], error)
}

// Options configures a table implementation.
type Options struct {
	// MaxPageSize clamps page sizes. Zero means query.DefaultMaxPageSize.
	MaxPageSize int
	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger
}

// WithDefaults fills unset options.
func (o Options) WithDefaults() Options {
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = query.DefaultMaxPageSize
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// CheckQueryKey enforces that a key accompanies Lookup and nothing else.
func CheckQueryKey[E any, F record.Field](q query.Query[F], key *Key[E]) error {
	if q == nil {
		return fmt.Errorf("%w: nil query", ErrInvalidQuery)
	}
	lookup := query.IsLookup[F](q)
	if lookup && key == nil {
		return fmt.Errorf("%w: lookup requires a key", ErrInvalidQuery)
	}
	if !lookup && key != nil {
		return fmt.Errorf("%w: %s does not take a key", ErrInvalidQuery, q.Name())
	}
	return nil
}

// Prepare validates q with its key and compiles it against schema.
func Prepare[E any, F record.Field](q query.Query[F], key *Key[E], schema *record.Schema[E, F], opts Options) (query.Plan[F], error) {
	if err := CheckQueryKey[E, F](q, key); err != nil {
		return query.Plan[F]{}, err
	}
	return query.Compile(q, schema, opts.MaxPageSize)
}
