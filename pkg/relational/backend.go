// Package relational is the contract between the relational table adapter
// and a SQL database.
//
// The adapter speaks structured commands ([Select], [Exists], [Insert],
// [Update], [Delete], [CreateTable]); a [Dialect] renders them into
// parameterised SQL and a [Backend] executes them. Values always travel as
// statement arguments, never spliced into SQL text.
package relational

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrUnsupported is returned for commands a dialect cannot render.
var ErrUnsupported = errors.New("unsupported command")

// RowSet is the result of one command. Rows hold raw driver values in
// Columns order; mutations report RowsAffected and return no rows.
type RowSet struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
}

// Conn is a single database session. Commands issued on one Conn run in
// order on the same underlying connection.
type Conn interface {
	// Execute runs cmd and returns its rows.
	Execute(ctx context.Context, cmd Command) (RowSet, error)

	// LastInsertID returns the id generated by the most recent Insert on
	// this Conn.
	LastInsertID(ctx context.Context) (int64, error)

	// Close returns the session to its pool.
	Close() error
}

// Backend hands out sessions on one database.
type Backend interface {
	Conn(ctx context.Context) (Conn, error)
	Dialect() Dialect
	Close() error
}

// ID converts a raw driver value from an id column.
func ID(raw any) (int64, error) {
	switch n := raw.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("id %d overflows int64", n)
		}
		return int64(n), nil
	case []byte:
		id, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("id %q: %w", n, err)
		}
		return id, nil
	}
	return 0, fmt.Errorf("unexpected id type %T", raw)
}
