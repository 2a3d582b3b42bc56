package query

import (
	"slices"

	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/value"
)

// Run executes p over rows, which must be in insertion order.
// fields returns the flattened form of a row.
//
// The pipeline is filter, stable sort, then page. Rows with equal sort values
// keep their insertion order in both directions.
func Run[T any, F record.Field](p Plan[F], rows []T, fields func(T) []value.Value) []T {
	type item struct {
		row    T
		values []value.Value
	}

	matched := make([]item, 0, len(rows))
	for _, row := range rows {
		values := fields(row)
		if matchesAll(p.Conditions, values) {
			matched = append(matched, item{row: row, values: values})
		}
	}

	if p.Sorted {
		slices.SortStableFunc(matched, func(a, b item) int {
			c, _ := value.Compare(a.values[p.SortPos], b.values[p.SortPos])
			if p.Direction == Desc {
				return -c
			}
			return c
		})
	}

	if p.Paged {
		if p.Offset >= len(matched) {
			matched = matched[:0]
		} else {
			end := len(matched)
			if p.Limit < end-p.Offset {
				end = p.Offset + p.Limit
			}
			matched = matched[p.Offset:end]
		}
	}

	out := make([]T, len(matched))
	for i, it := range matched {
		out[i] = it.row
	}
	return out
}

func matchesAll[F record.Field](conds []Condition[F], values []value.Value) bool {
	for _, c := range conds {
		if !c.Matches(values) {
			return false
		}
	}
	return true
}
