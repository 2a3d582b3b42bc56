package record

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tablestore/pkg/value"
)

type courseField int

const (
	courseCode courseField = iota
	courseCredits
	courseLab
)

func (f courseField) String() string {
	switch f {
	case courseCode:
		return "code"
	case courseCredits:
		return "credits"
	case courseLab:
		return "lab"
	}
	return ""
}

type course struct {
	Code    string
	Credits float32
	Lab     bool
}

func courseSchema(t *testing.T) *Schema[course, courseField] {
	t.Helper()
	s, err := NewSchema("course",
		[]Column[courseField]{
			{Name: courseCode, Kind: value.KindString},
			{Name: courseCredits, Kind: value.KindFloat},
			{Name: courseLab, Kind: value.KindBoolean},
		},
		func(c course) []value.Value {
			return []value.Value{value.String(c.Code), value.Float(c.Credits), value.Boolean(c.Lab)}
		},
		func(v []value.Value) (course, error) {
			code, _ := v[0].AsString()
			credits, _ := v[1].AsFloat()
			lab, _ := v[2].AsBool()
			return course{Code: code, Credits: credits, Lab: lab}, nil
		},
	)
	require.NoError(t, err)
	return s
}

func TestSchema_RoundTrip(t *testing.T) {
	s := courseSchema(t)
	entries := []course{
		{Code: "ECE 09.101", Credits: 3, Lab: true},
		{Code: "", Credits: 0.5, Lab: false},
	}
	for _, e := range entries {
		fields, err := s.Fields(e)
		require.NoError(t, err)
		require.Len(t, fields, len(s.FieldNames()))

		back, err := s.FromFields(fields)
		require.NoError(t, err)
		assert.Equal(t, e, back)
	}
}

func TestSchema_FromFieldsMismatch(t *testing.T) {
	s := courseSchema(t)

	t.Run("short", func(t *testing.T) {
		_, err := s.FromFields([]value.Value{value.String("x")})
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("long", func(t *testing.T) {
		_, err := s.FromFields([]value.Value{value.String("x"), value.Float(1), value.Boolean(true), value.Integer(1)})
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("wrong kind at position", func(t *testing.T) {
		_, err := s.FromFields([]value.Value{value.String("x"), value.Integer(3), value.Boolean(true)})
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("non-finite float", func(t *testing.T) {
		_, err := s.FromFields([]value.Value{value.String("x"), value.Float(float32(math.NaN())), value.Boolean(true)})
		assert.ErrorIs(t, err, ErrSchemaMismatch)

		_, err = s.Fields(course{Code: "ECE 101", Credits: float32(math.Inf(1))})
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("decode failure", func(t *testing.T) {
		bad, err := NewSchema("bad",
			[]Column[courseField]{{Name: courseCode, Kind: value.KindString}},
			func(course) []value.Value { return []value.Value{value.String("")} },
			func([]value.Value) (course, error) { return course{}, errors.New("empty code") },
		)
		require.NoError(t, err)
		_, err = bad.FromFields([]value.Value{value.String("")})
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})
}

func TestSchema_Field(t *testing.T) {
	s := courseSchema(t)
	e := course{Code: "ME 10.201", Credits: 4, Lab: false}

	for i, name := range s.FieldNames() {
		got, err := s.Field(e, name)
		require.NoError(t, err)
		fields, err := s.Fields(e)
		require.NoError(t, err)
		assert.True(t, fields[i].Equal(got))
	}

	_, err := s.Field(e, courseField(99))
	assert.ErrorIs(t, err, ErrFieldNotMatched)
}

func TestSchema_ParseField(t *testing.T) {
	s := courseSchema(t)
	for _, name := range s.FieldNames() {
		parsed, err := s.ParseField(name.String())
		require.NoError(t, err)
		assert.Equal(t, name, parsed)
	}
	_, err := s.ParseField("Code")
	assert.ErrorIs(t, err, ErrFieldNotMatched)
}

func TestSchema_Metadata(t *testing.T) {
	s := courseSchema(t)
	assert.Equal(t, "course", s.Name())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []courseField{courseCode, courseCredits, courseLab}, s.FieldNames())

	k, err := s.Kind(courseCredits)
	require.NoError(t, err)
	assert.Equal(t, value.KindFloat, k)

	pos, err := s.Position(courseLab)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
}

func TestNewSchema_Validation(t *testing.T) {
	enc := func(course) []value.Value { return nil }
	dec := func([]value.Value) (course, error) { return course{}, nil }

	tests := []struct {
		name    string
		table   string
		columns []Column[courseField]
	}{
		{"empty name", "", []Column[courseField]{{Name: courseCode, Kind: value.KindString}}},
		{"no columns", "course", nil},
		{"invalid kind", "course", []Column[courseField]{{Name: courseCode}}},
		{"duplicate field", "course", []Column[courseField]{
			{Name: courseCode, Kind: value.KindString},
			{Name: courseCode, Kind: value.KindString},
		}},
		{"unnamed field", "course", []Column[courseField]{{Name: courseField(42), Kind: value.KindString}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.table, tt.columns, enc, dec)
			assert.Error(t, err)
		})
	}
}

func TestSchema_FieldsRejectsBadEncoder(t *testing.T) {
	s, err := NewSchema("course",
		[]Column[courseField]{{Name: courseCode, Kind: value.KindString}},
		func(c course) []value.Value { return []value.Value{value.Integer(1)} },
		func([]value.Value) (course, error) { return course{}, nil },
	)
	require.NoError(t, err)
	_, err = s.Fields(course{})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestSchema_With(t *testing.T) {
	s := courseSchema(t)
	e := course{Code: "ME 10.201", Credits: 4}

	got, err := s.With(e, courseLab, value.Boolean(true))
	require.NoError(t, err)
	assert.Equal(t, course{Code: "ME 10.201", Credits: 4, Lab: true}, got)
	assert.False(t, e.Lab)

	_, err = s.With(e, courseCredits, value.Integer(4))
	assert.ErrorIs(t, err, value.ErrWrongType)

	_, err = s.With(e, courseField(7), value.Integer(4))
	assert.ErrorIs(t, err, ErrFieldNotMatched)
}
