package query

import (
	"fmt"
	"math"

	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/value"
)

// Op is a filter comparison.
type Op int

const (
	// OpEqual is exact equality.
	OpEqual Op = iota
	// OpContains is substring containment on String fields.
	OpContains
)

func (o Op) String() string {
	if o == OpContains {
		return "contains"
	}
	return "="
}

// Condition is one resolved filter term. Pos is the field's canonical index.
type Condition[F record.Field] struct {
	Field F
	Pos   int
	Op    Op
	Value value.Value
}

// Matches reports whether the flattened entry satisfies c.
func (c Condition[F]) Matches(fields []value.Value) bool {
	if c.Pos < 0 || c.Pos >= len(fields) {
		return false
	}
	if c.Op == OpContains {
		return fields[c.Pos].Contains(c.Value)
	}
	return fields[c.Pos].Equal(c.Value)
}

// MaxOffset bounds Plan.Offset. Pages starting past it are empty on every
// backend; DuckDB rejects OFFSET values of 2^62 and above.
const MaxOffset = math.MaxInt >> 2

// Plan is a validated, backend-neutral query: filter, sort and page.
// The in-memory engines execute it with Run; the relational adapter renders
// it into a single command.
type Plan[F record.Field] struct {
	Name       string
	Lookup     bool
	Conditions []Condition[F]

	// Sorted and Paged are false only for unpaged searches, which return
	// every match in insertion order.
	Sorted    bool
	SortField F
	SortPos   int
	Direction SortDirection
	Paged     bool
	Limit     int
	Offset    int
}

// Compile validates q against schema and resolves it into a Plan.
// maxPageSize <= 0 selects DefaultMaxPageSize.
func Compile[E any, F record.Field](q Query[F], schema *record.Schema[E, F], maxPageSize int) (Plan[F], error) {
	if q == nil {
		return Plan[F]{}, fmt.Errorf("%w: nil query", ErrInvalidQuery)
	}
	plan := Plan[F]{Name: q.Name()}

	var page Page[F]
	switch v := q.(type) {
	case Lookup[F], *Lookup[F]:
		plan.Lookup = true
		return plan, nil
	case Search[F]:
		c, err := condition(schema, v.Field, OpEqual, v.Value)
		if err != nil {
			return Plan[F]{}, err
		}
		plan.Conditions = []Condition[F]{c}
		page = v.Page
	case PartialSearch[F]:
		c, err := condition(schema, v.Field, OpContains, v.Value)
		if err != nil {
			return Plan[F]{}, err
		}
		plan.Conditions = []Condition[F]{c}
		page = v.Page
	case MultiSearch[F]:
		if len(v.Fields) != len(v.Values) {
			return Plan[F]{}, fmt.Errorf("%w: multi search has %d fields but %d values", ErrInvalidQuery, len(v.Fields), len(v.Values))
		}
		if len(v.Fields) == 0 {
			return Plan[F]{}, fmt.Errorf("%w: multi search needs at least one field", ErrInvalidQuery)
		}
		for i := range v.Fields {
			c, err := condition(schema, v.Fields[i], OpEqual, v.Values[i])
			if err != nil {
				return Plan[F]{}, err
			}
			plan.Conditions = append(plan.Conditions, c)
		}
		page = v.Page
	case GetAll[F]:
		page = v.Page
	default:
		return Plan[F]{}, fmt.Errorf("%w: unsupported query %T", ErrInvalidQuery, q)
	}

	if err := plan.paginate(schema, page, maxPageSize); err != nil {
		return Plan[F]{}, err
	}
	return plan, nil
}

// Filter compiles an unpaged equality search: every entry whose field equals
// v, in insertion order.
func Filter[E any, F record.Field](schema *record.Schema[E, F], field F, v value.Value) (Plan[F], error) {
	c, err := condition(schema, field, OpEqual, v)
	if err != nil {
		return Plan[F]{}, err
	}
	return Plan[F]{Name: "search", Conditions: []Condition[F]{c}}, nil
}

func condition[E any, F record.Field](schema *record.Schema[E, F], field F, op Op, v value.Value) (Condition[F], error) {
	pos, err := schema.Position(field)
	if err != nil {
		return Condition[F]{}, err
	}
	kind := schema.Columns()[pos].Kind
	if op == OpContains && kind != value.KindString {
		return Condition[F]{}, fmt.Errorf("%w: partial search on %s field %s", ErrInvalidQuery, kind, field)
	}
	if v.Kind() != kind {
		return Condition[F]{}, fmt.Errorf("%w: field %s holds %s, query value is %s", value.ErrWrongType, field, kind, v.Kind())
	}
	return Condition[F]{Field: field, Pos: pos, Op: op, Value: v}, nil
}

func (p *Plan[F]) paginate(schema interface{ Position(F) (int, error) }, page Page[F], maxPageSize int) error {
	if page.Size < 1 {
		return fmt.Errorf("%w: page size %d", ErrInvalidQuery, page.Size)
	}
	if page.Number < 1 {
		return fmt.Errorf("%w: page number %d, pages start at 1", ErrInvalidQuery, page.Number)
	}
	if page.Direction != Asc && page.Direction != Desc {
		return fmt.Errorf("%w: sort direction %v", ErrInvalidQuery, page.Direction)
	}
	pos, err := schema.Position(page.SortField)
	if err != nil {
		return err
	}
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}

	size := min(page.Size, maxPageSize)
	offset := MaxOffset
	if page.Number-1 <= MaxOffset/size {
		offset = size * (page.Number - 1)
	}

	p.Sorted = true
	p.SortField = page.SortField
	p.SortPos = pos
	p.Direction = page.Direction
	p.Paged = true
	p.Limit = size
	p.Offset = offset
	return nil
}
