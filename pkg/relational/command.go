package relational

import "github.com/ssargent/tablestore/pkg/value"

// Command is one of Select, Exists, Insert, Update, Delete or CreateTable.
type Command interface {
	command()
}

// Op compares a column with a predicate value.
type Op int

const (
	// OpEqual is column = value.
	OpEqual Op = iota
	// OpContains is case-sensitive substring containment.
	OpContains
)

// Predicate is one WHERE term. Predicates in a command are ANDed.
// Value is a driver primitive: int32, int64, float32, string or bool.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Column declares one column for CreateTable.
type Column struct {
	Name string
	Kind value.Kind
}

// CreateTable creates Table with an auto-assigned BIGINT ID column followed
// by Columns, unless it already exists.
type CreateTable struct {
	Table   string
	ID      string
	Columns []Column
}

// Select reads Columns from rows matching Where. Limit < 0 means no limit.
type Select struct {
	Table   string
	Columns []string
	Where   []Predicate
	OrderBy []Order
	Limit   int
	Offset  int
}

// Exists reports whether any row matches Where. The RowSet holds one row
// with one column when a row exists and no rows otherwise.
type Exists struct {
	Table string
	Where []Predicate
}

// Insert adds one row. The generated id is read with Conn.LastInsertID.
type Insert struct {
	Table   string
	ID      string
	Columns []string
	Values  []any
}

// Update sets Columns to Values on rows matching Where.
type Update struct {
	Table   string
	Columns []string
	Values  []any
	Where   []Predicate
}

// Delete removes rows matching Where.
type Delete struct {
	Table string
	Where []Predicate
}

func (CreateTable) command() {}
func (Select) command()      {}
func (Exists) command()      {}
func (Insert) command()      {}
func (Update) command()      {}
func (Delete) command()      {}
