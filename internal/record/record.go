// Package record implements the typed value <-> bytes codec described
// in spec §4.4 and grounded on Common/Record.java: a null-bitmap
// header followed by non-null attribute values in schema order.
package record

import (
	"encoding/binary"
	"fmt"
	"math"

	"jottdb/internal/types"
)

// bitmapSize is ceil(numAttributes / 8).
func bitmapSize(numAttributes int) int {
	return (numAttributes + 7) / 8
}

// EncodedSize returns the byte size attr's value would occupy, not
// counting the bitmap. Only called for non-null values.
func EncodedSize(attr types.AttributeSchema, v types.Value) (int, error) {
	switch attr.DataType.Tag {
	case types.INTEGER:
		return 4, nil
	case types.DOUBLE:
		return 8, nil
	case types.BOOLEAN:
		return 1, nil
	case types.CHAR:
		return attr.DataType.MaxLength, nil
	case types.VARCHAR:
		return 2 + len(v.Str), nil
	default:
		return 0, fmt.Errorf("record: unknown data type tag %v", attr.DataType.Tag)
	}
}

// Encode serializes values against schema: a null-bitmap header (bit i
// of byte i/8, LSB-first within the byte) then the concatenation of
// non-null attribute encodings in attribute order. It rejects a null
// in a NOT NULL attribute, a type mismatch, or a string exceeding its
// CHAR/VARCHAR bound before allocating anything.
func Encode(values []types.Value, schema *types.TableSchema) ([]byte, error) {
	n := len(values)
	if n != schema.AttributeCount() {
		return nil, fmt.Errorf("record: value count %d does not match schema attribute count %d", n, schema.AttributeCount())
	}

	for i, v := range values {
		attr := schema.Attributes[i]
		if v.IsNull() {
			if attr.IsNotNull {
				return nil, fmt.Errorf("record: attribute %q is not-null: %w", attr.Name, types.ErrNullInNotNull)
			}
			continue
		}
		if err := checkType(attr, v); err != nil {
			return nil, err
		}
	}

	total := bitmapSize(n)
	sizes := make([]int, n)
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		size, err := EncodedSize(schema.Attributes[i], v)
		if err != nil {
			return nil, err
		}
		sizes[i] = size
		total += size
	}

	buf := make([]byte, total)
	writeNullBitmap(buf[:bitmapSize(n)], values)

	off := bitmapSize(n)
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		attr := schema.Attributes[i]
		if err := writeValue(buf[off:off+sizes[i]], attr, v); err != nil {
			return nil, err
		}
		off += sizes[i]
	}

	return buf, nil
}

// Decode is Encode's inverse: it reads the null bitmap, then each
// non-null attribute value in schema order.
func Decode(data []byte, schema *types.TableSchema) ([]types.Value, error) {
	n := schema.AttributeCount()
	nullBitmap := readNullBitmap(data, n)

	values := make([]types.Value, n)
	off := bitmapSize(n)
	for i := 0; i < n; i++ {
		if nullBitmap[i] {
			values[i] = types.NullValue()
			continue
		}
		attr := schema.Attributes[i]
		v, size, err := readValue(data[off:], attr)
		if err != nil {
			return nil, err
		}
		values[i] = v
		off += size
	}
	return values, nil
}

func checkType(attr types.AttributeSchema, v types.Value) error {
	switch attr.DataType.Tag {
	case types.INTEGER:
		if v.Kind != types.Int {
			return fmt.Errorf("record: attribute %q expects INTEGER: %w", attr.Name, types.ErrTypeMismatch)
		}
	case types.DOUBLE:
		if v.Kind != types.Double {
			return fmt.Errorf("record: attribute %q expects DOUBLE: %w", attr.Name, types.ErrTypeMismatch)
		}
	case types.BOOLEAN:
		if v.Kind != types.Bool {
			return fmt.Errorf("record: attribute %q expects BOOLEAN: %w", attr.Name, types.ErrTypeMismatch)
		}
	case types.CHAR:
		if v.Kind != types.String {
			return fmt.Errorf("record: attribute %q expects CHAR: %w", attr.Name, types.ErrTypeMismatch)
		}
		if len(v.Str) > attr.DataType.MaxLength {
			return fmt.Errorf("record: attribute %q value %q exceeds CHAR(%d): %w", attr.Name, v.Str, attr.DataType.MaxLength, types.ErrLengthExceeded)
		}
	case types.VARCHAR:
		if v.Kind != types.String {
			return fmt.Errorf("record: attribute %q expects VARCHAR: %w", attr.Name, types.ErrTypeMismatch)
		}
		if len(v.Str) > attr.DataType.MaxLength {
			return fmt.Errorf("record: attribute %q value %q exceeds VARCHAR(%d): %w", attr.Name, v.Str, attr.DataType.MaxLength, types.ErrLengthExceeded)
		}
	}
	return nil
}

func writeNullBitmap(dst []byte, values []types.Value) {
	for i, v := range values {
		if v.IsNull() {
			dst[i/8] |= 1 << uint(i%8)
		}
	}
}

func readNullBitmap(data []byte, n int) []bool {
	bitmap := make([]bool, n)
	for i := 0; i < n; i++ {
		byteIdx, bitIdx := i/8, uint(i%8)
		bitmap[i] = (data[byteIdx]>>bitIdx)&1 == 1
	}
	return bitmap
}

func writeValue(dst []byte, attr types.AttributeSchema, v types.Value) error {
	switch attr.DataType.Tag {
	case types.INTEGER:
		binary.LittleEndian.PutUint32(dst, uint32(v.Int))
	case types.DOUBLE:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v.Double))
	case types.BOOLEAN:
		if v.Bool {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case types.CHAR:
		// Zero-padded on write; the rest of dst stays zero from make().
		copy(dst, v.Str)
	case types.VARCHAR:
		binary.LittleEndian.PutUint16(dst[0:2], uint16(len(v.Str)))
		copy(dst[2:], v.Str)
	default:
		return fmt.Errorf("record: unknown data type tag %v", attr.DataType.Tag)
	}
	return nil
}

func readValue(data []byte, attr types.AttributeSchema) (types.Value, int, error) {
	switch attr.DataType.Tag {
	case types.INTEGER:
		return types.IntValue(int32(binary.LittleEndian.Uint32(data[0:4]))), 4, nil
	case types.DOUBLE:
		return types.DoubleValue(math.Float64frombits(binary.LittleEndian.Uint64(data[0:8]))), 8, nil
	case types.BOOLEAN:
		return types.BoolValue(data[0] == 1), 1, nil
	case types.CHAR:
		n := attr.DataType.MaxLength
		return types.StringValue(trimChar(data[0:n])), n, nil
	case types.VARCHAR:
		length := int(binary.LittleEndian.Uint16(data[0:2]))
		return types.StringValue(string(data[2 : 2+length])), 2 + length, nil
	default:
		return types.Value{}, 0, fmt.Errorf("record: unknown data type tag %v", attr.DataType.Tag)
	}
}

// trimChar strips trailing zero bytes then trailing ASCII whitespace,
// matching Record.fromBytes's CHAR handling exactly.
func trimChar(raw []byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	for end > 0 && isASCIISpace(raw[end-1]) {
		end--
	}
	return string(raw[:end])
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}
