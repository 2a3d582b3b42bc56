package relational

import (
	"fmt"
	"strings"

	"github.com/ssargent/tablestore/pkg/value"
)

// DuckDB renders for github.com/duckdb/duckdb-go. Ids come from a per-table
// sequence and are returned by the insert itself.
type DuckDB struct{}

func (DuckDB) Name() string { return "duckdb" }

func (DuckDB) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (DuckDB) ColumnType(kind value.Kind) (string, error) {
	switch kind {
	case value.KindInteger:
		return "INTEGER", nil
	case value.KindFloat:
		return "FLOAT", nil
	case value.KindString:
		return "VARCHAR", nil
	case value.KindBoolean:
		return "BOOLEAN", nil
	}
	return "", fmt.Errorf("%w: column kind %s", ErrUnsupported, kind)
}

func (DuckDB) Contains(col, arg string) string {
	return fmt.Sprintf("contains(%s, %s)", col, arg)
}

func (d DuckDB) CreateTable(c CreateTable) ([]Statement, error) {
	defs, err := columnDefs(d, c)
	if err != nil {
		return nil, err
	}
	seq := c.Table + "_" + c.ID + "_seq"
	return []Statement{
		{SQL: fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START 1", d.Quote(seq))},
		{SQL: fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s BIGINT PRIMARY KEY DEFAULT nextval('%s'), %s)",
			d.Quote(c.Table), d.Quote(c.ID), strings.ReplaceAll(seq, "'", "''"), defs)},
	}, nil
}

func (DuckDB) Returning() bool { return true }

func (DuckDB) LastInsertID() Statement { return Statement{} }
