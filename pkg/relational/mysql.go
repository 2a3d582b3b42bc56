package relational

import (
	"fmt"
	"strings"

	"github.com/ssargent/tablestore/pkg/value"
)

// MySQL renders for github.com/go-sql-driver/mysql. String columns use a
// binary collation so equality and ordering are byte-wise like the other
// backends.
type MySQL struct{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (MySQL) ColumnType(kind value.Kind) (string, error) {
	switch kind {
	case value.KindInteger:
		return "INT", nil
	case value.KindFloat:
		return "FLOAT", nil
	case value.KindString:
		return "VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin", nil
	case value.KindBoolean:
		return "BOOLEAN", nil
	}
	return "", fmt.Errorf("%w: column kind %s", ErrUnsupported, kind)
}

func (MySQL) Contains(col, arg string) string {
	return fmt.Sprintf("INSTR(BINARY %s, %s) > 0", col, arg)
}

func (d MySQL) CreateTable(c CreateTable) ([]Statement, error) {
	defs, err := columnDefs(d, c)
	if err != nil {
		return nil, err
	}
	return []Statement{
		{SQL: fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY, %s)",
			d.Quote(c.Table), d.Quote(c.ID), defs)},
	}, nil
}

func (MySQL) Returning() bool { return false }

func (MySQL) LastInsertID() Statement {
	return Statement{SQL: "SELECT LAST_INSERT_ID()"}
}
