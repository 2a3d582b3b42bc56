package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/ssargent/tablestore/pkg/value"
)

// ErrCorruption is returned when encoded row data fails validation.
var ErrCorruption = errors.New("corrupt row")

const headerSize = 8 // CRC32(4) + Count(4)

// RowCodec handles serialization and deserialization of rows
type RowCodec struct{}

// NewRowCodec creates a new row codec instance
func NewRowCodec() *RowCodec {
	return &RowCodec{}
}

// Encode serializes a row of values into the binary row format
// Format: [CRC32(4)][Count(4)][Kind(1) Payload]...
func (c *RowCodec) Encode(values []value.Value) ([]byte, error) {
	size, err := Size(values)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, headerSize, size)
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(values)))
	for _, v := range values {
		buf = appendValue(buf, v)
	}
	binary.LittleEndian.PutUint32(buf[0:], crc32.ChecksumIEEE(buf[4:]))

	return buf, nil
}

// Decode validates the checksum and deserializes a row
func (c *RowCodec) Decode(data []byte) ([]value.Value, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: data too short for row header", ErrCorruption)
	}
	want := binary.LittleEndian.Uint32(data[0:4])
	if got := crc32.ChecksumIEEE(data[4:]); got != want {
		return nil, fmt.Errorf("%w: CRC32 mismatch: %d != %d", ErrCorruption, got, want)
	}

	count := binary.LittleEndian.Uint32(data[4:8])
	// every value takes at least two bytes
	if uint64(count)*2 > uint64(len(data)-headerSize) {
		return nil, fmt.Errorf("%w: %d values cannot fit in %d bytes", ErrCorruption, count, len(data))
	}

	values := make([]value.Value, 0, count)
	rest := data[headerSize:]
	for i := uint32(0); i < count; i++ {
		v, n, err := readValue(rest)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		values = append(values, v)
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruption, len(rest))
	}

	return values, nil
}

// Size returns the encoded size of a row
func Size(values []value.Value) (int, error) {
	if uint64(len(values)) > math.MaxUint32 {
		return 0, fmt.Errorf("row too large: %d values", len(values))
	}
	size := headerSize
	for i, v := range values {
		switch v.Kind() {
		case value.KindInteger, value.KindFloat:
			size += 1 + 4
		case value.KindBoolean:
			size += 1 + 1
		case value.KindString:
			s, _ := v.AsString()
			if uint64(len(s)) > math.MaxUint32 {
				return 0, fmt.Errorf("value %d: string too large", i)
			}
			size += 1 + 4 + len(s)
		default:
			return 0, fmt.Errorf("value %d: cannot encode %s", i, v.Kind())
		}
	}
	return size, nil
}

func appendValue(buf []byte, v value.Value) []byte {
	buf = append(buf, byte(v.Kind()))
	switch v.Kind() {
	case value.KindInteger:
		n, _ := v.AsInt()
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n))
	case value.KindFloat:
		f, _ := v.AsFloat()
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	case value.KindBoolean:
		b, _ := v.AsBool()
		if b {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case value.KindString:
		s, _ := v.AsString()
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
		buf = append(buf, s...)
	}
	return buf
}

func readValue(data []byte) (value.Value, int, error) {
	if len(data) < 2 {
		return value.Value{}, 0, fmt.Errorf("%w: truncated value", ErrCorruption)
	}
	kind := value.Kind(data[0])
	body := data[1:]
	switch kind {
	case value.KindInteger:
		if len(body) < 4 {
			return value.Value{}, 0, fmt.Errorf("%w: truncated integer", ErrCorruption)
		}
		return value.Integer(int32(binary.LittleEndian.Uint32(body))), 5, nil
	case value.KindFloat:
		if len(body) < 4 {
			return value.Value{}, 0, fmt.Errorf("%w: truncated float", ErrCorruption)
		}
		return value.Float(math.Float32frombits(binary.LittleEndian.Uint32(body))), 5, nil
	case value.KindBoolean:
		switch body[0] {
		case 0:
			return value.Boolean(false), 2, nil
		case 1:
			return value.Boolean(true), 2, nil
		}
		return value.Value{}, 0, fmt.Errorf("%w: boolean byte %#x", ErrCorruption, body[0])
	case value.KindString:
		if len(body) < 4 {
			return value.Value{}, 0, fmt.Errorf("%w: truncated string length", ErrCorruption)
		}
		n := binary.LittleEndian.Uint32(body)
		if uint64(n) > uint64(len(body)-4) {
			return value.Value{}, 0, fmt.Errorf("%w: string of %d bytes exceeds row", ErrCorruption, n)
		}
		return value.String(string(body[4 : 4+n])), 1 + 4 + int(n), nil
	}
	return value.Value{}, 0, fmt.Errorf("%w: unknown kind %d", ErrCorruption, kind)
}
