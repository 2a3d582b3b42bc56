// Package record describes entry types: the ordered, typed set of fields an
// entry is made of and the conversion between an entry and its flattened
// []value.Value form.
package record

import (
	"errors"
	"fmt"

	"github.com/ssargent/tablestore/pkg/value"
)

var (
	// ErrSchemaMismatch is returned when an entry cannot be built from, or
	// flattened to, a value sequence matching its declared fields.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrFieldNotMatched is returned for a field name outside the declared set.
	ErrFieldNotMatched = errors.New("field not matched")
)

// Field is the constraint for a per-entry-type field enumeration.
// String must return the field's canonical name, which is also its column
// name in relational backends.
type Field interface {
	comparable
	fmt.Stringer
}

// Column declares one field and the kind of value it holds.
type Column[F Field] struct {
	Name F
	Kind value.Kind
}

// Schema is the conversion table for one entry type E with field set F.
// Column order is the canonical field position.
type Schema[E any, F Field] struct {
	name      string
	columns   []Column[F]
	positions map[F]int
	byName    map[string]F
	encode    func(E) []value.Value
	decode    func([]value.Value) (E, error)
}

// NewSchema declares an entry type.
//
// encode must return exactly one value per column, in column order. decode
// receives values already checked for arity and kind, so it only needs to
// unpack them.
func NewSchema[E any, F Field](name string, columns []Column[F], encode func(E) []value.Value, decode func([]value.Value) (E, error)) (*Schema[E, F], error) {
	if name == "" {
		return nil, errors.New("schema name cannot be empty")
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("schema %s declares no fields", name)
	}
	if encode == nil || decode == nil {
		return nil, fmt.Errorf("schema %s needs both encode and decode", name)
	}

	s := &Schema[E, F]{
		name:      name,
		columns:   append([]Column[F](nil), columns...),
		positions: make(map[F]int, len(columns)),
		byName:    make(map[string]F, len(columns)),
		encode:    encode,
		decode:    decode,
	}
	for i, c := range columns {
		if c.Kind == value.KindInvalid {
			return nil, fmt.Errorf("schema %s: field %s has no kind", name, c.Name)
		}
		text := c.Name.String()
		if text == "" {
			return nil, fmt.Errorf("schema %s: field %d has an empty name", name, i)
		}
		if _, dup := s.positions[c.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %s", name, text)
		}
		if _, dup := s.byName[text]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field name %q", name, text)
		}
		s.positions[c.Name] = i
		s.byName[text] = c.Name
	}
	return s, nil
}

// MustSchema is NewSchema for package-level declarations.
func MustSchema[E any, F Field](name string, columns []Column[F], encode func(E) []value.Value, decode func([]value.Value) (E, error)) *Schema[E, F] {
	s, err := NewSchema(name, columns, encode, decode)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the entry type's name; relational backends use it as the
// table name.
func (s *Schema[E, F]) Name() string { return s.name }

// Len returns the entry arity.
func (s *Schema[E, F]) Len() int { return len(s.columns) }

// Columns returns a copy of the declared columns.
func (s *Schema[E, F]) Columns() []Column[F] {
	return append([]Column[F](nil), s.columns...)
}

// FieldNames returns every field in declaration order.
func (s *Schema[E, F]) FieldNames() []F {
	names := make([]F, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Position returns the canonical index of field.
func (s *Schema[E, F]) Position(field F) (int, error) {
	i, ok := s.positions[field]
	if !ok {
		return 0, fmt.Errorf("%w: %v is not a field of %s", ErrFieldNotMatched, field, s.name)
	}
	return i, nil
}

// Kind returns the declared kind of field.
func (s *Schema[E, F]) Kind(field F) (value.Kind, error) {
	i, err := s.Position(field)
	if err != nil {
		return value.KindInvalid, err
	}
	return s.columns[i].Kind, nil
}

// ParseField resolves a field from its string form.
func (s *Schema[E, F]) ParseField(text string) (F, error) {
	f, ok := s.byName[text]
	if !ok {
		var zero F
		return zero, fmt.Errorf("%w: %q is not a field of %s", ErrFieldNotMatched, text, s.name)
	}
	return f, nil
}

// Fields flattens e into one value per field, in declaration order.
func (s *Schema[E, F]) Fields(e E) ([]value.Value, error) {
	values := s.encode(e)
	if err := s.check(values); err != nil {
		return nil, err
	}
	return values, nil
}

// FromFields rebuilds an entry from its flattened form. It fails with
// ErrSchemaMismatch when the arity differs or a value's kind does not match
// its field.
func (s *Schema[E, F]) FromFields(values []value.Value) (E, error) {
	if err := s.check(values); err != nil {
		var zero E
		return zero, err
	}
	e, err := s.decode(values)
	if err != nil {
		var zero E
		return zero, fmt.Errorf("%w: %s: %v", ErrSchemaMismatch, s.name, err)
	}
	return e, nil
}

// Field returns the value of field in e.
func (s *Schema[E, F]) Field(e E, field F) (value.Value, error) {
	i, err := s.Position(field)
	if err != nil {
		return value.Value{}, err
	}
	values, err := s.Fields(e)
	if err != nil {
		return value.Value{}, err
	}
	return values[i], nil
}

func (s *Schema[E, F]) check(values []value.Value) error {
	if len(values) != len(s.columns) {
		return fmt.Errorf("%w: %s expects %d fields, got %d", ErrSchemaMismatch, s.name, len(s.columns), len(values))
	}
	for i, v := range values {
		if v.Kind() != s.columns[i].Kind {
			return fmt.Errorf("%w: %s.%s expects %s, got %s", ErrSchemaMismatch, s.name, s.columns[i].Name, s.columns[i].Kind, v.Kind())
		}
		// Relational backends order or reject NaN and infinities differently.
		if !v.Finite() {
			return fmt.Errorf("%w: %s.%s is %s, not a finite number", ErrSchemaMismatch, s.name, s.columns[i].Name, v)
		}
	}
	return nil
}

// With returns a copy of e with field set to v.
func (s *Schema[E, F]) With(e E, field F, v value.Value) (E, error) {
	i, err := s.Position(field)
	if err != nil {
		return e, err
	}
	if v.Kind() != s.columns[i].Kind {
		return e, fmt.Errorf("%w: %s.%s expects %s, got %s", value.ErrWrongType, s.name, field, s.columns[i].Kind, v.Kind())
	}
	values, err := s.Fields(e)
	if err != nil {
		return e, err
	}
	values[i] = v
	return s.FromFields(values)
}
