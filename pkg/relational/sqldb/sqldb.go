// Package sqldb implements relational.Backend on database/sql with the
// DuckDB and MySQL drivers.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/go-sql-driver/mysql"

	"github.com/ssargent/tablestore/pkg/relational"
)

// Pool is a database/sql pool bound to a dialect.
type Pool struct {
	db      *sql.DB
	dialect relational.Dialect
}

// DialectFor returns the dialect of a supported driver.
func DialectFor(driver string) (relational.Dialect, error) {
	switch driver {
	case "duckdb":
		return relational.DuckDB{}, nil
	case "mysql":
		return relational.MySQL{}, nil
	}
	return nil, fmt.Errorf("unsupported sql driver %q", driver)
}

// Open opens a pool for driver ("duckdb" or "mysql") and verifies it with a
// ping. An empty duckdb dsn is an in-memory database.
func Open(ctx context.Context, driver, dsn string) (*Pool, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return New(db, dialect), nil
}

// New wraps an existing pool.
func New(db *sql.DB, dialect relational.Dialect) *Pool {
	return &Pool{db: db, dialect: dialect}
}

// Conn pins one connection from the pool.
func (p *Pool) Conn(ctx context.Context) (relational.Conn, error) {
	c, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &conn{c: c, dialect: p.dialect}, nil
}

func (p *Pool) Dialect() relational.Dialect { return p.dialect }

// DB exposes the underlying pool.
func (p *Pool) DB() *sql.DB { return p.db }

func (p *Pool) Close() error { return p.db.Close() }

type conn struct {
	c       *sql.Conn
	dialect relational.Dialect

	lastID    int64
	hasLastID bool
}

func (c *conn) Execute(ctx context.Context, cmd relational.Command) (relational.RowSet, error) {
	stmts, err := relational.Render(c.dialect, cmd)
	if err != nil {
		return relational.RowSet{}, err
	}

	_, isInsert := cmd.(relational.Insert)
	returnsRows := false
	switch cmd.(type) {
	case relational.Select, relational.Exists:
		returnsRows = true
	case relational.Insert:
		returnsRows = c.dialect.Returning()
	}

	var rs relational.RowSet
	for i, stmt := range stmts {
		if returnsRows && i == len(stmts)-1 {
			rs, err = c.query(ctx, stmt)
		} else {
			rs, err = c.exec(ctx, stmt)
		}
		if err != nil {
			return relational.RowSet{}, err
		}
	}

	if isInsert {
		c.hasLastID = false
		if returnsRows {
			if len(rs.Rows) != 1 || len(rs.Rows[0]) != 1 {
				return relational.RowSet{}, errors.New("insert returned no id")
			}
			id, err := relational.ID(rs.Rows[0][0])
			if err != nil {
				return relational.RowSet{}, err
			}
			c.lastID, c.hasLastID = id, true
		}
	}
	return rs, nil
}

func (c *conn) LastInsertID(ctx context.Context) (int64, error) {
	if c.hasLastID {
		return c.lastID, nil
	}
	stmt := c.dialect.LastInsertID()
	if stmt.SQL == "" {
		return 0, errors.New("no insert on this connection")
	}
	var raw any
	if err := c.c.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&raw); err != nil {
		return 0, err
	}
	return relational.ID(raw)
}

func (c *conn) Close() error { return c.c.Close() }

func (c *conn) exec(ctx context.Context, stmt relational.Statement) (relational.RowSet, error) {
	res, err := c.c.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return relational.RowSet{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		n = -1
	}
	return relational.RowSet{RowsAffected: n}, nil
}

func (c *conn) query(ctx context.Context, stmt relational.Statement) (relational.RowSet, error) {
	rows, err := c.c.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return relational.RowSet{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return relational.RowSet{}, err
	}
	rs := relational.RowSet{Columns: cols}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return relational.RowSet{}, err
		}
		for i, v := range raw {
			// drivers may reuse byte buffers between rows
			if b, ok := v.([]byte); ok {
				raw[i] = append([]byte(nil), b...)
			}
		}
		rs.Rows = append(rs.Rows, raw)
	}
	return rs, rows.Err()
}
