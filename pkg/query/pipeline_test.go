package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tablestore/pkg/directory"
	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/value"
)

var (
	ece = directory.Department{Name: "Electrical and Computer Engineering", Abbreviation: "ECE"}
	me  = directory.Department{Name: "Mechanical Engineering", Abbreviation: "ME"}
	bme = directory.Department{Name: "Biomedical Engineering", Abbreviation: "BME"}
)

func run(t *testing.T, q deptQuery, rows []directory.Department) []directory.Department {
	t.Helper()
	plan, err := query.Compile(q, directory.Departments, 0)
	require.NoError(t, err)
	return query.Run(plan, rows, func(d directory.Department) []value.Value {
		fields, err := directory.Departments.Fields(d)
		require.NoError(t, err)
		return fields
	})
}

func TestRun_Pagination(t *testing.T) {
	rows := []directory.Department{ece, me, bme}
	abbr := directory.DepartmentAbbreviation

	tests := []struct {
		name string
		page query.Page[directory.DepartmentField]
		want []directory.Department
	}{
		{"asc first page", page(2, abbr, query.Asc, 1), []directory.Department{bme, ece}},
		{"asc second page", page(2, abbr, query.Asc, 2), []directory.Department{me}},
		{"asc past the end", page(2, abbr, query.Asc, 3), []directory.Department{}},
		{"desc first page", page(2, abbr, query.Desc, 1), []directory.Department{me, ece}},
		{"desc second page", page(2, abbr, query.Desc, 2), []directory.Department{bme}},
		{"single page holds all", page(100, directory.DepartmentName, query.Asc, 1), []directory.Department{bme, ece, me}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(t, query.GetAll[directory.DepartmentField]{Page: tt.page}, rows)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun_StableTies(t *testing.T) {
	a := directory.Department{Name: "Engineering A", Abbreviation: "ENG"}
	b := directory.Department{Name: "Engineering B", Abbreviation: "ENG"}
	c := directory.Department{Name: "Engineering C", Abbreviation: "ENG"}
	rows := []directory.Department{b, a, c}

	for _, dir := range []query.SortDirection{query.Asc, query.Desc} {
		t.Run(dir.String(), func(t *testing.T) {
			got := run(t, query.GetAll[directory.DepartmentField]{Page: page(10, directory.DepartmentAbbreviation, dir, 1)}, rows)
			assert.Equal(t, rows, got)
		})
	}
}

func TestRun_Filters(t *testing.T) {
	rows := []directory.Department{ece, me, bme}
	all := page(10, directory.DepartmentAbbreviation, query.Asc, 1)

	t.Run("search", func(t *testing.T) {
		got := run(t, query.Search[directory.DepartmentField]{
			Field: directory.DepartmentAbbreviation, Value: value.String("ECE"), Page: all,
		}, rows)
		assert.Equal(t, []directory.Department{ece}, got)
	})

	t.Run("search no match", func(t *testing.T) {
		got := run(t, query.Search[directory.DepartmentField]{
			Field: directory.DepartmentAbbreviation, Value: value.String("ece"), Page: all,
		}, rows)
		assert.Empty(t, got)
	})

	t.Run("partial search", func(t *testing.T) {
		got := run(t, query.PartialSearch[directory.DepartmentField]{
			Field: directory.DepartmentName, Value: value.String("Engineering"), Page: all,
		}, rows)
		assert.Equal(t, []directory.Department{bme, ece, me}, got)
	})

	t.Run("partial search is case sensitive", func(t *testing.T) {
		got := run(t, query.PartialSearch[directory.DepartmentField]{
			Field: directory.DepartmentName, Value: value.String("engineering"), Page: all,
		}, rows)
		assert.Empty(t, got)
	})

	t.Run("multi search", func(t *testing.T) {
		got := run(t, query.MultiSearch[directory.DepartmentField]{
			Fields: []directory.DepartmentField{directory.DepartmentName, directory.DepartmentAbbreviation},
			Values: []value.Value{value.String("Mechanical Engineering"), value.String("ME")},
			Page:   all,
		}, rows)
		assert.Equal(t, []directory.Department{me}, got)
	})

	t.Run("multi search requires every field", func(t *testing.T) {
		got := run(t, query.MultiSearch[directory.DepartmentField]{
			Fields: []directory.DepartmentField{directory.DepartmentName, directory.DepartmentAbbreviation},
			Values: []value.Value{value.String("Mechanical Engineering"), value.String("ECE")},
			Page:   all,
		}, rows)
		assert.Empty(t, got)
	})
}

func TestRun_UnpagedFilterKeepsInsertionOrder(t *testing.T) {
	x := directory.Department{Name: "Zoology", Abbreviation: "BIO"}
	y := directory.Department{Name: "Anatomy", Abbreviation: "BIO"}
	rows := []directory.Department{x, ece, y}

	plan, err := query.Filter(directory.Departments, directory.DepartmentAbbreviation, value.String("BIO"))
	require.NoError(t, err)
	got := query.Run(plan, rows, func(d directory.Department) []value.Value {
		fields, _ := directory.Departments.Fields(d)
		return fields
	})
	assert.Equal(t, []directory.Department{x, y}, got)

	_, err = query.Filter(directory.Departments, directory.DepartmentAbbreviation, value.Boolean(true))
	assert.ErrorIs(t, err, value.ErrWrongType)
}
