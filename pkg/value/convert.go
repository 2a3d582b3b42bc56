package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts text into a value of the given kind.
func Parse(kind Kind, text string) (Value, error) {
	switch kind {
	case KindInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an integer", ErrWrongType, text)
		}
		return Integer(int32(n)), nil
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a float", ErrWrongType, text)
		}
		return Float(float32(f)), nil
	case KindString:
		return String(text), nil
	case KindBoolean:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true", "t", "1", "yes":
			return Boolean(true), nil
		case "false", "f", "0", "no":
			return Boolean(false), nil
		}
		return Value{}, fmt.Errorf("%w: %q is not a boolean", ErrWrongType, text)
	default:
		return Value{}, fmt.Errorf("%w: cannot parse into %s", ErrWrongType, kind)
	}
}

// FromPrimitive converts a raw driver or decoded JSON value into a value of
// the declared kind. NULL (nil) is never accepted.
func FromPrimitive(raw any, kind Kind) (Value, error) {
	switch r := raw.(type) {
	case nil:
		return Value{}, fmt.Errorf("%w: NULL for %s", ErrWrongType, kind)
	case Value:
		if r.kind != kind {
			return Value{}, r.wrongType(kind)
		}
		return r, nil
	case []byte:
		return Parse(kind, string(r))
	case string:
		if kind == KindString {
			return String(r), nil
		}
		return Parse(kind, r)
	}

	switch kind {
	case KindInteger:
		n, ok := asInt64(raw)
		if !ok || n < math.MinInt32 || n > math.MaxInt32 {
			return Value{}, fmt.Errorf("%w: %T(%v) is not an int32", ErrWrongType, raw, raw)
		}
		return Integer(int32(n)), nil
	case KindFloat:
		switch r := raw.(type) {
		case float32:
			return Float(r), nil
		case float64:
			return Float(float32(r)), nil
		}
		if n, ok := asInt64(raw); ok {
			return Float(float32(n)), nil
		}
	case KindBoolean:
		if b, ok := raw.(bool); ok {
			return Boolean(b), nil
		}
		if n, ok := asInt64(raw); ok && (n == 0 || n == 1) {
			return Boolean(n == 1), nil
		}
	}
	return Value{}, fmt.Errorf("%w: cannot read %T as %s", ErrWrongType, raw, kind)
}

func asInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		// JSON numbers decode as float64.
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}
