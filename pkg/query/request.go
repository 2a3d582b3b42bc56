package query

import (
	"fmt"
	"strings"

	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/value"
)

// Request is the textual form of a query as it arrives from the HTTP API or
// the command line. Field names and values are resolved against a schema by
// ParseRequest.
type Request struct {
	Type      string
	Fields    []string
	Values    []string
	Sort      string
	Direction string
	Size      int
	Number    int
}

// ParseRequest builds a typed query from r.
//
// Empty Type selects get_all, empty Sort the first column, empty Direction
// ascending order, zero Size DefaultMaxPageSize and zero Number the first
// page. Everything else is passed through for Compile to validate.
func ParseRequest[E any, F record.Field](schema *record.Schema[E, F], r Request) (Query[F], error) {
	page, err := parsePage(schema, r)
	if err != nil {
		return nil, err
	}

	kind := strings.ToLower(strings.TrimSpace(r.Type))
	switch kind {
	case "", "get_all", "all":
		return GetAll[F]{Page: page}, nil
	case "lookup":
		return Lookup[F]{}, nil
	case "search", "partial_search":
		if len(r.Fields) != 1 || len(r.Values) != 1 {
			return nil, fmt.Errorf("%w: %s takes exactly one field and one value", ErrInvalidQuery, kind)
		}
		field, v, err := parseTerm(schema, r.Fields[0], r.Values[0])
		if err != nil {
			return nil, err
		}
		if kind == "search" {
			return Search[F]{Field: field, Value: v, Page: page}, nil
		}
		return PartialSearch[F]{Field: field, Value: v, Page: page}, nil
	case "multi_search":
		if len(r.Fields) != len(r.Values) {
			return nil, fmt.Errorf("%w: multi search has %d fields but %d values", ErrInvalidQuery, len(r.Fields), len(r.Values))
		}
		q := MultiSearch[F]{Page: page}
		for i := range r.Fields {
			field, v, err := parseTerm(schema, r.Fields[i], r.Values[i])
			if err != nil {
				return nil, err
			}
			q.Fields = append(q.Fields, field)
			q.Values = append(q.Values, v)
		}
		return q, nil
	}
	return nil, fmt.Errorf("%w: unknown query type %q", ErrInvalidQuery, r.Type)
}

func parsePage[E any, F record.Field](schema *record.Schema[E, F], r Request) (Page[F], error) {
	page := Page[F]{Size: r.Size, Number: r.Number, Direction: Asc}
	if page.Size == 0 {
		page.Size = DefaultMaxPageSize
	}
	if page.Number == 0 {
		page.Number = 1
	}
	if r.Direction != "" {
		d, err := ParseSortDirection(r.Direction)
		if err != nil {
			return page, err
		}
		page.Direction = d
	}
	if r.Sort == "" {
		page.SortField = schema.FieldNames()[0]
		return page, nil
	}
	field, err := schema.ParseField(r.Sort)
	if err != nil {
		return page, err
	}
	page.SortField = field
	return page, nil
}

func parseTerm[E any, F record.Field](schema *record.Schema[E, F], name, text string) (F, value.Value, error) {
	field, err := schema.ParseField(name)
	if err != nil {
		return field, value.Value{}, err
	}
	kind, err := schema.Kind(field)
	if err != nil {
		return field, value.Value{}, err
	}
	v, err := value.Parse(kind, text)
	if err != nil {
		return field, value.Value{}, fmt.Errorf("field %s: %w", field, err)
	}
	return field, v, nil
}
