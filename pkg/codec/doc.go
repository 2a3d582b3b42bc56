// Package codec provides row serialization and deserialization for the
// persistent table backend.
//
// # Row Format
//
// A row is the flattened form of one entry: its field values in declaration
// order. Rows are serialized as
//
//	[CRC32(4)][Count(4)][Kind(1) Payload]...
//
// Fields:
//   - CRC32: IEEE checksum over everything after the CRC32 field (little-endian)
//   - Count: number of values (little-endian)
//   - Kind: the value.Kind byte
//   - Payload: Integer and Float take 4 bytes (Float as IEEE-754 bits),
//     Boolean takes 1 byte (0 or 1), String takes a 4 byte length and the
//     string bytes
//
// # Usage
//
//	c := codec.NewRowCodec()
//
//	encoded, err := c.Encode([]value.Value{value.String("ECE"), value.Integer(7)})
//	if err != nil {
//	    return err
//	}
//
//	values, err := c.Decode(encoded)
//	if err != nil {
//	    return err // errors.Is(err, codec.ErrCorruption) for damaged data
//	}
//
// The codec carries no schema. Callers check arity and kinds against their
// record schema after decoding.
//
// # Thread Safety
//
// RowCodec instances are safe for concurrent use.
package codec
