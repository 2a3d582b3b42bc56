package relational

import (
	"fmt"
	"strings"

	"github.com/ssargent/tablestore/pkg/value"
)

// Statement is parameterised SQL ready for database/sql.
type Statement struct {
	SQL  string
	Args []any
}

// Dialect holds the SQL differences between databases.
type Dialect interface {
	// Name is the database/sql driver name.
	Name() string
	Quote(ident string) string
	ColumnType(kind value.Kind) (string, error)
	// Contains renders a case-sensitive substring test of col against
	// the placeholder arg.
	Contains(col, arg string) string
	// CreateTable renders the statements that create c if it is missing.
	CreateTable(c CreateTable) ([]Statement, error)
	// Returning reports whether Insert returns the generated id directly.
	Returning() bool
	// LastInsertID reads the id generated by the session's last insert.
	LastInsertID() Statement
}

// Render turns cmd into the statements that execute it.
func Render(d Dialect, cmd Command) ([]Statement, error) {
	switch c := cmd.(type) {
	case CreateTable:
		return d.CreateTable(c)
	case Select:
		s, err := renderSelect(d, c)
		return []Statement{s}, err
	case Exists:
		var b builder
		b.printf("SELECT 1 FROM %s", d.Quote(c.Table))
		b.where(d, c.Where)
		b.printf(" LIMIT 1")
		return []Statement{b.statement()}, nil
	case Insert:
		s, err := renderInsert(d, c)
		return []Statement{s}, err
	case Update:
		s, err := renderUpdate(d, c)
		return []Statement{s}, err
	case Delete:
		var b builder
		b.printf("DELETE FROM %s", d.Quote(c.Table))
		b.where(d, c.Where)
		return []Statement{b.statement()}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupported, cmd)
}

func renderSelect(d Dialect, c Select) (Statement, error) {
	if len(c.Columns) == 0 {
		return Statement{}, fmt.Errorf("%w: select without columns", ErrUnsupported)
	}
	var b builder
	b.printf("SELECT %s FROM %s", quoteAll(d, c.Columns), d.Quote(c.Table))
	b.where(d, c.Where)
	for i, o := range c.OrderBy {
		if i == 0 {
			b.printf(" ORDER BY ")
		} else {
			b.printf(", ")
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		b.printf("%s %s", d.Quote(o.Column), dir)
	}
	if c.Limit >= 0 {
		b.printf(" LIMIT ? OFFSET ?")
		b.args = append(b.args, c.Limit, c.Offset)
	}
	return b.statement(), nil
}

func renderInsert(d Dialect, c Insert) (Statement, error) {
	if len(c.Columns) != len(c.Values) {
		return Statement{}, fmt.Errorf("%w: insert has %d columns but %d values", ErrUnsupported, len(c.Columns), len(c.Values))
	}
	var b builder
	b.printf("INSERT INTO %s (%s) VALUES (", d.Quote(c.Table), quoteAll(d, c.Columns))
	for i, v := range c.Values {
		if i > 0 {
			b.printf(", ")
		}
		b.param(v)
	}
	b.printf(")")
	if d.Returning() {
		b.printf(" RETURNING %s", d.Quote(c.ID))
	}
	return b.statement(), nil
}

func renderUpdate(d Dialect, c Update) (Statement, error) {
	if len(c.Columns) != len(c.Values) || len(c.Columns) == 0 {
		return Statement{}, fmt.Errorf("%w: update has %d columns and %d values", ErrUnsupported, len(c.Columns), len(c.Values))
	}
	var b builder
	b.printf("UPDATE %s SET ", d.Quote(c.Table))
	for i, col := range c.Columns {
		if i > 0 {
			b.printf(", ")
		}
		b.printf("%s = ", d.Quote(col))
		b.param(c.Values[i])
	}
	b.where(d, c.Where)
	return b.statement(), nil
}

type builder struct {
	sql  strings.Builder
	args []any
}

func (b *builder) printf(format string, args ...any) {
	fmt.Fprintf(&b.sql, format, args...)
}

// param appends a placeholder for v. Floats are cast so comparisons with
// FLOAT columns happen in single precision.
func (b *builder) param(v any) {
	if _, ok := v.(float32); ok {
		b.sql.WriteString("CAST(? AS FLOAT)")
	} else {
		b.sql.WriteString("?")
	}
	b.args = append(b.args, v)
}

func (b *builder) where(d Dialect, preds []Predicate) {
	for i, p := range preds {
		if i == 0 {
			b.printf(" WHERE ")
		} else {
			b.printf(" AND ")
		}
		col := d.Quote(p.Column)
		switch p.Op {
		case OpContains:
			b.printf("%s", d.Contains(col, "?"))
			b.args = append(b.args, p.Value)
		default:
			b.printf("%s = ", col)
			b.param(p.Value)
		}
	}
}

func (b *builder) statement() Statement {
	return Statement{SQL: b.sql.String(), Args: b.args}
}

func quoteAll(d Dialect, idents []string) string {
	quoted := make([]string, len(idents))
	for i, id := range idents {
		quoted[i] = d.Quote(id)
	}
	return strings.Join(quoted, ", ")
}

func columnDefs(d Dialect, c CreateTable) (string, error) {
	defs := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		typ, err := d.ColumnType(col.Kind)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", col.Name, err)
		}
		defs[i] = fmt.Sprintf("%s %s NOT NULL", d.Quote(col.Name), typ)
	}
	return strings.Join(defs, ", "), nil
}
