package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/value"
)

// ErrInvalidQuery is returned when a query is malformed for its shape.
var ErrInvalidQuery = errors.New("invalid query")

// DefaultMaxPageSize bounds the number of rows a single page may return.
const DefaultMaxPageSize = 100

// SortDirection orders query results by the sort field.
type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

func (d SortDirection) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseSortDirection parses "asc" or "desc", case-insensitively.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(s) {
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return Asc, fmt.Errorf("%w: unknown sort direction %q", ErrInvalidQuery, s)
}

// Page selects one sorted page of results. Number is 1-indexed.
type Page[F record.Field] struct {
	Size      int
	SortField F
	Direction SortDirection
	Number    int
}

// Query is one of Lookup, Search, PartialSearch, MultiSearch or GetAll.
type Query[F record.Field] interface {
	isQuery()
	// Name is the variant name, used in logs and metrics labels.
	Name() string
}

// Lookup resolves the key passed alongside the query: zero or one result.
type Lookup[F record.Field] struct{}

// Search matches entries whose Field equals Value.
type Search[F record.Field] struct {
	Field F
	Value value.Value
	Page  Page[F]
}

// PartialSearch matches entries whose String Field contains Value.
type PartialSearch[F record.Field] struct {
	Field F
	Value value.Value
	Page  Page[F]
}

// MultiSearch matches entries where every Fields[i] equals Values[i].
type MultiSearch[F record.Field] struct {
	Fields []F
	Values []value.Value
	Page   Page[F]
}

// GetAll matches every entry.
type GetAll[F record.Field] struct {
	Page Page[F]
}

func (Lookup[F]) isQuery()        {}
func (Search[F]) isQuery()        {}
func (PartialSearch[F]) isQuery() {}
func (MultiSearch[F]) isQuery()   {}
func (GetAll[F]) isQuery()        {}

func (Lookup[F]) Name() string        { return "lookup" }
func (Search[F]) Name() string        { return "search" }
func (PartialSearch[F]) Name() string { return "partial_search" }
func (MultiSearch[F]) Name() string   { return "multi_search" }
func (GetAll[F]) Name() string        { return "get_all" }

// IsLookup reports whether q is the Lookup variant.
func IsLookup[F record.Field](q Query[F]) bool {
	_, ok := q.(Lookup[F])
	if !ok {
		_, ok = q.(*Lookup[F])
	}
	return ok
}
