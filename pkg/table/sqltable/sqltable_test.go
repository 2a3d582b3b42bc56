package sqltable

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tablestore/pkg/directory"
	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/relational"
	"github.com/ssargent/tablestore/pkg/relational/sqldb"
	"github.com/ssargent/tablestore/pkg/table"
	"github.com/ssargent/tablestore/pkg/table/kvtable"
	"github.com/ssargent/tablestore/pkg/table/memtable"
	"github.com/ssargent/tablestore/pkg/table/tabletest"
	"github.com/ssargent/tablestore/pkg/value"
)

var _ table.Table[directory.Department, directory.DepartmentField] = (*Table[directory.Department, directory.DepartmentField])(nil)

func openTable[E any, F record.Field](t *testing.T, schema interface{ Name() string }, build func(relational.Backend) *Table[E, F]) *Table[E, F] {
	t.Helper()
	pool, err := sqldb.Open(context.Background(), "duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	tbl := build(pool)
	require.NoError(t, tbl.EnsureSchema(context.Background()), schema.Name())
	return tbl
}

func duckDBFactory() tabletest.Factory {
	return tabletest.Factory{
		Departments: func(t *testing.T) tabletest.Departments {
			return openTable(t, directory.Departments, func(b relational.Backend) *Table[directory.Department, directory.DepartmentField] {
				return New(b, directory.Departments, table.Options{})
			})
		},
		Users: func(t *testing.T) tabletest.Users {
			return openTable(t, directory.Users, func(b relational.Backend) *Table[directory.User, directory.UserField] {
				return New(b, directory.Users, table.Options{})
			})
		},
	}
}

func TestConformance_DuckDB(t *testing.T) {
	tabletest.Run(t, duckDBFactory())
}

func TestEquivalence(t *testing.T) {
	mem := tabletest.Factory{
		Departments: func(t *testing.T) tabletest.Departments {
			return memtable.New(directory.Departments, table.Options{})
		},
		Users: func(t *testing.T) tabletest.Users {
			return memtable.New(directory.Users, table.Options{})
		},
	}
	kv := tabletest.Factory{
		Users: func(t *testing.T) tabletest.Users {
			store, err := kvtable.OpenStore(t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			tbl, err := kvtable.New(store, directory.Users, table.Options{})
			require.NoError(t, err)
			return tbl
		},
	}

	t.Run("memtable/duckdb", func(t *testing.T) { tabletest.Equivalent(t, mem, duckDBFactory()) })
	t.Run("memtable/pebble", func(t *testing.T) { tabletest.Equivalent(t, mem, kv) })
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	ctx := context.Background()
	tbl := openTable(t, directory.Departments, func(b relational.Backend) *Table[directory.Department, directory.DepartmentField] {
		return New(b, directory.Departments, table.Options{})
	})

	k := tbl.Insert(ctx, tabletest.ECE)
	require.True(t, k.Valid())
	require.NoError(t, tbl.EnsureSchema(ctx))

	ok, err := tbl.Contains(ctx, k)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTranslate(t *testing.T) {
	plan, err := query.Compile[directory.User, directory.UserField](query.MultiSearch[directory.UserField]{
		Fields: []directory.UserField{directory.UserActive, directory.UserEmail},
		Values: []value.Value{value.Boolean(true), value.String("rowan.edu")},
		Page:   query.Page[directory.UserField]{Size: 500, SortField: directory.UserGPA, Direction: query.Desc, Number: 3},
	}, directory.Users, 0)
	require.NoError(t, err)

	sel := Translate("user", []string{"firstname", "lastname", "email", "bannerID", "gpa", "active"}, plan)
	assert.Equal(t, relational.Select{
		Table:   "user",
		Columns: []string{"id", "firstname", "lastname", "email", "bannerID", "gpa", "active"},
		Where: []relational.Predicate{
			{Column: "active", Op: relational.OpEqual, Value: true},
			{Column: "email", Op: relational.OpEqual, Value: "rowan.edu"},
		},
		OrderBy: []relational.Order{{Column: "gpa", Desc: true}, {Column: "id"}},
		Limit:   100,
		Offset:  200,
	}, sel)

	stmts, err := relational.Render(relational.DuckDB{}, sel)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id", "firstname", "lastname", "email", "bannerID", "gpa", "active" FROM "user" WHERE "active" = ? AND "email" = ? ORDER BY "gpa" DESC, "id" ASC LIMIT ? OFFSET ?`, stmts[0].SQL)

	plan, err = query.Filter(directory.Users, directory.UserLastName, value.String("Hopper"))
	require.NoError(t, err)
	sel = Translate("user", []string{"lastname"}, plan)
	assert.Equal(t, -1, sel.Limit)
	assert.Equal(t, []relational.Order{{Column: "id"}}, sel.OrderBy)
}

// failing is a backend whose sessions reject every command.
type failing struct{ relational.Backend }

type failingConn struct{}

func (failing) Conn(context.Context) (relational.Conn, error) { return failingConn{}, nil }

func (failingConn) Execute(context.Context, relational.Command) (relational.RowSet, error) {
	return relational.RowSet{}, errors.New("connection reset")
}
func (failingConn) LastInsertID(context.Context) (int64, error) { return 0, errors.New("no insert") }
func (failingConn) Close() error                                { return nil }

func TestTable_BackendFailures(t *testing.T) {
	ctx := context.Background()
	tbl := New(failing{}, directory.Departments, table.Options{})

	k := tbl.Insert(ctx, tabletest.ECE)
	assert.False(t, k.Valid())

	valid, err := tbl.ParseKey("1")
	require.NoError(t, err)

	_, _, err = tbl.Lookup(ctx, valid)
	assert.ErrorIs(t, err, table.ErrBackendFailure)
	_, err = tbl.Contains(ctx, valid)
	assert.ErrorIs(t, err, table.ErrBackendFailure)
	assert.ErrorIs(t, tbl.Remove(ctx, valid), table.ErrBackendFailure)
	assert.ErrorIs(t, tbl.Update(ctx, valid, tabletest.ME), table.ErrBackendFailure)
	_, err = tbl.Search(ctx, directory.DepartmentAbbreviation, value.String("ECE"))
	assert.ErrorIs(t, err, table.ErrBackendFailure)
	assert.ErrorIs(t, tbl.EnsureSchema(ctx), table.ErrBackendFailure)

	// Invalid keys never reach the backend.
	assert.ErrorIs(t, tbl.Remove(ctx, k), table.ErrKeyNotFound)
}

// stale is a backend whose rows hold values of the wrong shape.
type stale struct{ relational.Backend }

type staleConn struct{}

func (stale) Conn(context.Context) (relational.Conn, error) { return staleConn{}, nil }

func (staleConn) Execute(context.Context, relational.Command) (relational.RowSet, error) {
	return relational.RowSet{Rows: [][]any{{int64(1), "Mechanical Engineering", nil}}}, nil
}
func (staleConn) LastInsertID(context.Context) (int64, error) { return 0, nil }
func (staleConn) Close() error                                { return nil }

func TestTable_SchemaMismatch(t *testing.T) {
	ctx := context.Background()
	tbl := New(stale{}, directory.Departments, table.Options{})

	k := tbl.Insert(ctx, tabletest.ME)
	assert.False(t, k.Valid(), "zero id is not a valid key")

	valid, err := tbl.ParseKey("1")
	require.NoError(t, err)
	_, _, err = tbl.Lookup(ctx, valid)
	assert.ErrorIs(t, err, table.ErrSchemaMismatch)
}
