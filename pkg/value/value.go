package value

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrWrongType is returned when a value is read as an incompatible type.
var ErrWrongType = errors.New("wrong value type")

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInteger
	KindFloat
	KindString
	KindBoolean
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindInteger: "integer",
	KindFloat:   "float",
	KindString:  "string",
	KindBoolean: "boolean",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses the textual form produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if Kind(k) != KindInvalid && strings.EqualFold(name, s) {
			return Kind(k), nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown value kind %q", s)
}

// Value is a scalar: Integer, Float, String or Boolean.
// The zero Value has KindInvalid.
type Value struct {
	kind Kind
	i    int32
	f    float32
	s    string
	b    bool
}

// Integer returns an Integer value.
func Integer(v int32) Value { return Value{kind: KindInteger, i: v} }

// Float returns a Float value.
func Float(v float32) Value { return Value{kind: KindFloat, f: v} }

// String returns a String value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Boolean returns a Boolean value.
func Boolean(v bool) Value { return Value{kind: KindBoolean, b: v} }

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds one of the four variants.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// String renders v as text. It is total: every variant has a textual form and
// the invalid value renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(int64(v.i), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.f), 'g', -1, 32)
	case KindString:
		return v.s
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// GoString makes %#v output readable in test failures.
func (v Value) GoString() string {
	if v.kind == KindString {
		return fmt.Sprintf("%s(%q)", v.kind, v.s)
	}
	return fmt.Sprintf("%s(%s)", v.kind, v.String())
}

func (v Value) wrongType(want Kind) error {
	return fmt.Errorf("%w: want %s, have %s", ErrWrongType, want, v.kind)
}

// AsInt returns the Integer payload.
func (v Value) AsInt() (int32, error) {
	if v.kind != KindInteger {
		return 0, v.wrongType(KindInteger)
	}
	return v.i, nil
}

// AsFloat returns the Float payload.
func (v Value) AsFloat() (float32, error) {
	if v.kind != KindFloat {
		return 0, v.wrongType(KindFloat)
	}
	return v.f, nil
}

// AsString returns the String payload. Use String() for a total conversion.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", v.wrongType(KindString)
	}
	return v.s, nil
}

// AsBool returns the Boolean payload.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBoolean {
		return false, v.wrongType(KindBoolean)
	}
	return v.b, nil
}

// Primitive returns the payload as a plain Go value (int32, float32, string
// or bool), suitable as a database/sql argument or JSON scalar.
func (v Value) Primitive() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBoolean:
		return v.b
	default:
		return nil
	}
}

// Equal reports whether a and b hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	c, ok := Compare(v, o)
	return ok && c == 0
}

// Contains reports whether v is a String containing the String sub.
// Matching is plain byte containment: case-sensitive and locale-agnostic.
func (v Value) Contains(sub Value) bool {
	if v.kind != KindString || sub.kind != KindString {
		return false
	}
	return strings.Contains(v.s, sub.s)
}

// Compare orders a and b. ok is false when the kinds differ or either value
// is invalid; the result is then meaningless.
func Compare(a, b Value) (c int, ok bool) {
	if a.kind != b.kind || a.kind == KindInvalid {
		return 0, false
	}
	switch a.kind {
	case KindInteger:
		return cmp.Compare(a.i, b.i), true
	case KindFloat:
		return cmp.Compare(a.f, b.f), true
	case KindString:
		return strings.Compare(a.s, b.s), true
	case KindBoolean:
		switch {
		case a.b == b.b:
			return 0, true
		case !a.b:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

// Finite reports whether v is not a NaN or infinite Float. Values of other
// kinds are always finite.
func (v Value) Finite() bool {
	if v.kind != KindFloat {
		return true
	}
	f := float64(v.f)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON encodes the payload as a JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return strconv.AppendInt(nil, int64(v.i), 10), nil
	case KindFloat:
		if !v.Finite() {
			return nil, fmt.Errorf("cannot encode %v as JSON", v.f)
		}
		return strconv.AppendFloat(nil, float64(v.f), 'g', -1, 32), nil
	case KindString:
		return json.Marshal(v.s)
	case KindBoolean:
		return strconv.AppendBool(nil, v.b), nil
	default:
		return []byte("null"), nil
	}
}
