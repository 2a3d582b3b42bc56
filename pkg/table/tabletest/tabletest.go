// Package tabletest is a conformance suite for table.Table implementations.
//
// Backends call Run from their own tests with factories that return fresh,
// empty tables; every implementation must pass the same suite.
package tabletest

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tablestore/pkg/directory"
	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/table"
	"github.com/ssargent/tablestore/pkg/value"
)

type (
	Departments = table.Table[directory.Department, directory.DepartmentField]
	Users       = table.Table[directory.User, directory.UserField]
)

// Factory builds fresh, empty tables. Each call must return an independent
// table instance.
type Factory struct {
	Departments func(t *testing.T) Departments
	Users       func(t *testing.T) Users
}

var (
	ECE = directory.Department{Name: "Electrical and Computer Engineering", Abbreviation: "ECE"}
	ME  = directory.Department{Name: "Mechanical Engineering", Abbreviation: "ME"}
	BME = directory.Department{Name: "Biomedical Engineering", Abbreviation: "BME"}
	CS  = directory.Department{Name: "Computer Science", Abbreviation: "CS"}
)

// SampleUsers is a small user dataset covering every value kind.
var SampleUsers = []directory.User{
	{FirstName: "Nick", LastName: "Kluzynski", Email: "kluzynskn6@students.rowan.edu", BannerID: 916181533, GPA: 3.5, Active: true},
	{FirstName: "Ada", LastName: "Lovelace", Email: "lovelace@rowan.edu", BannerID: 916000001, GPA: 4, Active: true},
	{FirstName: "Alan", LastName: "Turing", Email: "turing@rowan.edu", BannerID: 916000002, GPA: 3.75, Active: false},
	{FirstName: "Grace", LastName: "Hopper", Email: "hopper@students.rowan.edu", BannerID: 916000003, GPA: 3.5, Active: true},
	{FirstName: "Edsger", LastName: "Dijkstra", Email: "dijkstra@rowan.edu", BannerID: 916000004, GPA: 2.25, Active: false},
}

func deptPage(size int, by directory.DepartmentField, dir query.SortDirection, number int) query.Page[directory.DepartmentField] {
	return query.Page[directory.DepartmentField]{Size: size, SortField: by, Direction: dir, Number: number}
}

func userPage(size int, by directory.UserField, dir query.SortDirection, number int) query.Page[directory.UserField] {
	return query.Page[directory.UserField]{Size: size, SortField: by, Direction: dir, Number: number}
}

func insertAll[E any](t *testing.T, tbl interface {
	Insert(context.Context, E) table.Key[E]
}, entries ...E) []table.Key[E] {
	t.Helper()
	keys := make([]table.Key[E], len(entries))
	for i, e := range entries {
		keys[i] = tbl.Insert(context.Background(), e)
		require.True(t, keys[i].Valid(), "insert %d returned an invalid key", i)
	}
	return keys
}

// Entries strips keys from rows.
func Entries[E any](rows []table.Row[E]) []E {
	out := make([]E, len(rows))
	for i, r := range rows {
		out[i] = r.Entry
	}
	return out
}

// Run executes the conformance suite.
func Run(t *testing.T, f Factory) {
	t.Run("InsertLookup", func(t *testing.T) { testInsertLookup(t, f) })
	t.Run("KeysAreUnique", func(t *testing.T) { testKeysAreUnique(t, f) })
	t.Run("Remove", func(t *testing.T) { testRemove(t, f) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, f) })
	t.Run("ForeignAndInvalidKeys", func(t *testing.T) { testForeignAndInvalidKeys(t, f) })
	t.Run("ParseKey", func(t *testing.T) { testParseKey(t, f) })
	t.Run("Search", func(t *testing.T) { testSearch(t, f) })
	t.Run("Pagination", func(t *testing.T) { testPagination(t, f) })
	t.Run("StableTies", func(t *testing.T) { testStableTies(t, f) })
	t.Run("PageSizeClamp", func(t *testing.T) { testPageSizeClamp(t, f) })
	t.Run("LookupQuery", func(t *testing.T) { testLookupQuery(t, f) })
	t.Run("InvalidQueries", func(t *testing.T) { testInvalidQueries(t, f) })
	t.Run("PartialAndMultiSearch", func(t *testing.T) { testPartialAndMultiSearch(t, f) })
	t.Run("AllKinds", func(t *testing.T) { testAllKinds(t, f) })
	t.Run("NonFiniteFloats", func(t *testing.T) { testNonFiniteFloats(t, f) })
}

func testInsertLookup(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)

	k := tbl.Insert(ctx, ECE)
	require.True(t, k.Valid())

	got, ok, err := tbl.Lookup(ctx, k)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ECE, got)

	ok, err = tbl.Contains(ctx, k)
	require.NoError(t, err)
	assert.True(t, ok)
}

func testKeysAreUnique(t *testing.T, f Factory) {
	tbl := f.Departments(t)
	keys := insertAll(t, tbl, ECE, ECE, ME, BME)

	seen := map[table.Key[directory.Department]]bool{}
	for i, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
		if i > 0 {
			assert.Greater(t, k.ID(), keys[i-1].ID())
		}
	}
}

func testRemove(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)
	keys := insertAll(t, tbl, ECE, ME)

	require.NoError(t, tbl.Remove(ctx, keys[0]))

	_, ok, err := tbl.Lookup(ctx, keys[0])
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tbl.Contains(ctx, keys[0])
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, tbl.Remove(ctx, keys[0]), table.ErrKeyNotFound)
	assert.ErrorIs(t, tbl.Update(ctx, keys[0], BME), table.ErrKeyNotFound)

	// The survivor is untouched and ids are not reused.
	got, ok, err := tbl.Lookup(ctx, keys[1])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ME, got)

	k := tbl.Insert(ctx, ECE)
	require.True(t, k.Valid())
	assert.NotEqual(t, keys[0], k)
	assert.Greater(t, k.ID(), keys[1].ID())

	_, ok, err = tbl.Lookup(ctx, keys[0])
	require.NoError(t, err)
	assert.False(t, ok)
}

func testUpdate(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)
	keys := insertAll(t, tbl, ECE, ME)

	renamed := directory.Department{Name: "Electrical Engineering", Abbreviation: "EE"}
	require.NoError(t, tbl.Update(ctx, keys[0], renamed))

	got, ok, err := tbl.Lookup(ctx, keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, renamed, got)

	rows, err := tbl.Search(ctx, directory.DepartmentAbbreviation, value.String("ECE"))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = tbl.Search(ctx, directory.DepartmentAbbreviation, value.String("EE"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, keys[0], rows[0].Key)

	// Updating keeps insertion order.
	rows, err = tbl.Query(ctx, query.GetAll[directory.DepartmentField]{
		Page: deptPage(10, directory.DepartmentName, query.Asc, 1),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []directory.Department{renamed, ME}, Entries(rows))
}

func testForeignAndInvalidKeys(t *testing.T, f Factory) {
	ctx := context.Background()
	a := f.Departments(t)
	b := f.Departments(t)

	ka := a.Insert(ctx, ECE)
	require.True(t, ka.Valid())
	kb := b.Insert(ctx, ME)
	require.True(t, kb.Valid())

	for name, k := range map[string]table.Key[directory.Department]{
		"foreign": kb,
		"zero":    {},
	} {
		t.Run(name, func(t *testing.T) {
			_, ok, err := a.Lookup(ctx, k)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = a.Contains(ctx, k)
			require.NoError(t, err)
			assert.False(t, ok)

			assert.ErrorIs(t, a.Update(ctx, k, BME), table.ErrKeyNotFound)
			assert.ErrorIs(t, a.Remove(ctx, k), table.ErrKeyNotFound)

			rows, err := a.Query(ctx, query.Lookup[directory.DepartmentField]{}, &k)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}

	got, ok, err := a.Lookup(ctx, ka)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ECE, got)
}

func testParseKey(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)
	k := tbl.Insert(ctx, BME)
	require.True(t, k.Valid())

	parsed, err := tbl.ParseKey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)

	got, ok, err := tbl.Lookup(ctx, parsed)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, BME, got)

	missing, err := tbl.ParseKey(fmt.Sprint(k.ID() + 1000))
	require.NoError(t, err)
	_, ok, err = tbl.Lookup(ctx, missing)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = tbl.ParseKey("not-a-key")
	assert.ErrorIs(t, err, table.ErrKeyNotFound)
}

func testSearch(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)
	keys := insertAll(t, tbl, ECE, ME)

	rows, err := tbl.Search(ctx, directory.DepartmentAbbreviation, value.String("ECE"))
	require.NoError(t, err)
	assert.Equal(t, []table.Row[directory.Department]{{Key: keys[0], Entry: ECE}}, rows)

	rows, err = tbl.Search(ctx, directory.DepartmentAbbreviation, value.String("CS"))
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = tbl.Search(ctx, directory.DepartmentAbbreviation, value.Integer(3))
	assert.ErrorIs(t, err, table.ErrWrongType)

	_, err = tbl.Search(ctx, directory.DepartmentField(42), value.String("ECE"))
	assert.ErrorIs(t, err, table.ErrFieldNotMatched)

	// Search is unpaged and keeps insertion order.
	more := insertAll(t, tbl, CS, ECE)
	rows, err = tbl.Search(ctx, directory.DepartmentAbbreviation, value.String("ECE"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, keys[0], rows[0].Key)
	assert.Equal(t, more[1], rows[1].Key)
}

func testPagination(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)
	insertAll(t, tbl, ECE, ME, BME)
	abbr := directory.DepartmentAbbreviation

	tests := []struct {
		name string
		page query.Page[directory.DepartmentField]
		want []directory.Department
	}{
		{"asc page 1", deptPage(2, abbr, query.Asc, 1), []directory.Department{BME, ECE}},
		{"asc page 2", deptPage(2, abbr, query.Asc, 2), []directory.Department{ME}},
		{"asc page 3", deptPage(2, abbr, query.Asc, 3), []directory.Department{}},
		{"far past the end", deptPage(2, abbr, query.Asc, math.MaxInt), []directory.Department{}},
		{"desc page 1", deptPage(2, abbr, query.Desc, 1), []directory.Department{ME, ECE}},
		{"desc page 2", deptPage(2, abbr, query.Desc, 2), []directory.Department{BME}},
		{"by name", deptPage(10, directory.DepartmentName, query.Asc, 1), []directory.Department{BME, ECE, ME}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := tbl.Query(ctx, query.GetAll[directory.DepartmentField]{Page: tt.page}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Entries(rows))
		})
	}
}

func testStableTies(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)
	entries := []directory.Department{
		{Name: "Engineering C", Abbreviation: "ENG"},
		{Name: "Engineering A", Abbreviation: "ENG"},
		{Name: "Engineering B", Abbreviation: "ENG"},
	}
	insertAll(t, tbl, entries...)

	for _, dir := range []query.SortDirection{query.Asc, query.Desc} {
		t.Run(dir.String(), func(t *testing.T) {
			rows, err := tbl.Query(ctx, query.GetAll[directory.DepartmentField]{
				Page: deptPage(10, directory.DepartmentAbbreviation, dir, 1),
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, entries, Entries(rows))
		})
	}
}

func testPageSizeClamp(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)
	for i := range query.DefaultMaxPageSize + 5 {
		k := tbl.Insert(ctx, directory.Department{Name: fmt.Sprintf("Department %03d", i), Abbreviation: fmt.Sprintf("D%03d", i)})
		require.True(t, k.Valid())
	}

	rows, err := tbl.Query(ctx, query.GetAll[directory.DepartmentField]{
		Page: deptPage(1000, directory.DepartmentAbbreviation, query.Asc, 1),
	}, nil)
	require.NoError(t, err)
	require.Len(t, rows, query.DefaultMaxPageSize)
	assert.Equal(t, "D000", rows[0].Entry.Abbreviation)

	rows, err = tbl.Query(ctx, query.GetAll[directory.DepartmentField]{
		Page: deptPage(1000, directory.DepartmentAbbreviation, query.Asc, 2),
	}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "D100", rows[0].Entry.Abbreviation)
}

func testLookupQuery(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)
	keys := insertAll(t, tbl, ECE, ME)

	rows, err := tbl.Query(ctx, query.Lookup[directory.DepartmentField]{}, &keys[1])
	require.NoError(t, err)
	assert.Equal(t, []table.Row[directory.Department]{{Key: keys[1], Entry: ME}}, rows)

	require.NoError(t, tbl.Remove(ctx, keys[1]))
	rows, err = tbl.Query(ctx, query.Lookup[directory.DepartmentField]{}, &keys[1])
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func testInvalidQueries(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)
	keys := insertAll(t, tbl, ECE)
	abbr := directory.DepartmentAbbreviation

	tests := []struct {
		name    string
		q       query.Query[directory.DepartmentField]
		key     *table.Key[directory.Department]
		wantErr error
	}{
		{"lookup without key", query.Lookup[directory.DepartmentField]{}, nil, table.ErrInvalidQuery},
		{"get all with key", query.GetAll[directory.DepartmentField]{Page: deptPage(1, abbr, query.Asc, 1)}, &keys[0], table.ErrInvalidQuery},
		{"zero page size", query.GetAll[directory.DepartmentField]{Page: deptPage(0, abbr, query.Asc, 1)}, nil, table.ErrInvalidQuery},
		{"zero page number", query.GetAll[directory.DepartmentField]{Page: deptPage(1, abbr, query.Asc, 0)}, nil, table.ErrInvalidQuery},
		{"unknown sort field", query.GetAll[directory.DepartmentField]{Page: deptPage(1, 42, query.Asc, 1)}, nil, table.ErrFieldNotMatched},
		{
			"multi search arity",
			query.MultiSearch[directory.DepartmentField]{
				Fields: []directory.DepartmentField{abbr},
				Values: []value.Value{value.String("ECE"), value.String("ME")},
				Page:   deptPage(1, abbr, query.Asc, 1),
			},
			nil,
			table.ErrInvalidQuery,
		},
		{
			"search wrong type",
			query.Search[directory.DepartmentField]{Field: abbr, Value: value.Boolean(true), Page: deptPage(1, abbr, query.Asc, 1)},
			nil,
			table.ErrWrongType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := tbl.Query(ctx, tt.q, tt.key)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, rows)
		})
	}
}

func testPartialAndMultiSearch(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Departments(t)
	insertAll(t, tbl, ECE, ME, BME, CS)
	abbr := directory.DepartmentAbbreviation

	rows, err := tbl.Query(ctx, query.PartialSearch[directory.DepartmentField]{
		Field: directory.DepartmentName,
		Value: value.String("Engineering"),
		Page:  deptPage(10, abbr, query.Desc, 1),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []directory.Department{ME, ECE, BME}, Entries(rows))

	rows, err = tbl.Query(ctx, query.PartialSearch[directory.DepartmentField]{
		Field: directory.DepartmentName,
		Value: value.String("computer"),
		Page:  deptPage(10, abbr, query.Asc, 1),
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, rows, "substring match is case sensitive")

	rows, err = tbl.Query(ctx, query.MultiSearch[directory.DepartmentField]{
		Fields: []directory.DepartmentField{directory.DepartmentName, abbr},
		Values: []value.Value{value.String("Computer Science"), value.String("CS")},
		Page:   deptPage(10, abbr, query.Asc, 1),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []directory.Department{CS}, Entries(rows))

	rows, err = tbl.Query(ctx, query.MultiSearch[directory.DepartmentField]{
		Fields: []directory.DepartmentField{directory.DepartmentName, abbr},
		Values: []value.Value{value.String("Computer Science"), value.String("ECE")},
		Page:   deptPage(10, abbr, query.Asc, 1),
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func testAllKinds(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Users(t)
	keys := insertAll(t, tbl, SampleUsers...)

	got, ok, err := tbl.Lookup(ctx, keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, SampleUsers[0], got)

	rows, err := tbl.Search(ctx, directory.UserBannerID, value.Integer(916000002))
	require.NoError(t, err)
	assert.Equal(t, []directory.User{SampleUsers[2]}, Entries(rows))

	rows, err = tbl.Search(ctx, directory.UserGPA, value.Float(3.5))
	require.NoError(t, err)
	assert.Equal(t, []directory.User{SampleUsers[0], SampleUsers[3]}, Entries(rows))

	rows, err = tbl.Query(ctx, query.GetAll[directory.UserField]{
		Page: userPage(3, directory.UserGPA, query.Desc, 1),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []directory.User{SampleUsers[1], SampleUsers[2], SampleUsers[0]}, Entries(rows))

	rows, err = tbl.Query(ctx, query.GetAll[directory.UserField]{
		Page: userPage(10, directory.UserActive, query.Asc, 1),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []directory.User{SampleUsers[2], SampleUsers[4], SampleUsers[0], SampleUsers[1], SampleUsers[3]}, Entries(rows))

	rows, err = tbl.Query(ctx, query.MultiSearch[directory.UserField]{
		Fields: []directory.UserField{directory.UserActive, directory.UserGPA},
		Values: []value.Value{value.Boolean(true), value.Float(3.5)},
		Page:   userPage(10, directory.UserBannerID, query.Desc, 1),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []directory.User{SampleUsers[0], SampleUsers[3]}, Entries(rows))

	rows, err = tbl.Query(ctx, query.PartialSearch[directory.UserField]{
		Field: directory.UserEmail,
		Value: value.String("@students."),
		Page:  userPage(10, directory.UserLastName, query.Asc, 1),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []directory.User{SampleUsers[3], SampleUsers[0]}, Entries(rows))

	_, err = tbl.Query(ctx, query.PartialSearch[directory.UserField]{
		Field: directory.UserBannerID,
		Value: value.Integer(916),
		Page:  userPage(10, directory.UserLastName, query.Asc, 1),
	}, nil)
	assert.ErrorIs(t, err, table.ErrInvalidQuery)
}

// NaN and the infinities sort and store differently across backends, so no
// table accepts them.
func testNonFiniteFloats(t *testing.T, f Factory) {
	ctx := context.Background()
	tbl := f.Users(t)
	keys := insertAll(t, tbl, SampleUsers[0])

	for _, gpa := range []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
		t.Run(fmt.Sprint(gpa), func(t *testing.T) {
			u := SampleUsers[1]
			u.GPA = gpa
			assert.False(t, tbl.Insert(ctx, u).Valid())

			err := tbl.Update(ctx, keys[0], u)
			assert.ErrorIs(t, err, table.ErrSchemaMismatch)

			got, ok, err := tbl.Lookup(ctx, keys[0])
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, SampleUsers[0], got)
		})
	}

	rows, err := tbl.Query(ctx, query.GetAll[directory.UserField]{Page: userPage(10, directory.UserGPA, query.Asc, 1)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []directory.User{SampleUsers[0]}, Entries(rows))
}
