// Package value provides the scalar value model shared by every table backend.
//
// A [Value] is a closed tagged union over four kinds:
//
//	Integer  int32
//	Float    float32
//	String   string
//	Boolean  bool
//
// Backends only ever see values, never concrete entry types, so this package
// is the single place where typed data is erased and recovered. Reading a
// value as the wrong type fails with [ErrWrongType] instead of panicking.
//
// # Ordering
//
// [Compare] orders two values of the same kind. Values of different kinds are
// unordered: Compare reports ok == false and [Value.Equal] reports false.
// Booleans order false before true. Strings order byte-wise.
//
// # Conversions
//
// [Parse] turns text into a value of a declared kind (CLI flags, URL query
// parameters). [FromPrimitive] turns a raw driver or JSON value into a value
// of a declared kind, accepting the widened representations database drivers
// commonly return (int64 for INTEGER, []byte for text protocols, 0/1 for
// booleans stored as TINYINT).
package value
