// Package types holds the schema and value vocabulary shared by the
// record codec, the catalog, and the storage manager: data types,
// attribute/table schemas, and the dynamic Value variant that stands in
// for the parser's untyped literals once they reach the engine.
package types

import "fmt"

// Tag identifies a scalar data type. CHAR and VARCHAR carry a MaxLength;
// it is meaningless (and left at -1) for the other tags.
type Tag int

const (
	INTEGER Tag = iota
	DOUBLE
	BOOLEAN
	CHAR
	VARCHAR
)

func (t Tag) String() string {
	switch t {
	case INTEGER:
		return "INTEGER"
	case DOUBLE:
		return "DOUBLE"
	case BOOLEAN:
		return "BOOLEAN"
	case CHAR:
		return "CHAR"
	case VARCHAR:
		return "VARCHAR"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// ParseTag maps a persisted or parsed type name back to its Tag.
func ParseTag(name string) (Tag, error) {
	switch name {
	case "INTEGER":
		return INTEGER, nil
	case "DOUBLE":
		return DOUBLE, nil
	case "BOOLEAN":
		return BOOLEAN, nil
	case "CHAR":
		return CHAR, nil
	case "VARCHAR":
		return VARCHAR, nil
	default:
		return 0, fmt.Errorf("unknown data type tag %q", name)
	}
}

// DataType is a tagged variant: a scalar kind plus, for CHAR/VARCHAR
// only, a positive max length. MaxLength is -1 for every other tag.
type DataType struct {
	Tag       Tag
	MaxLength int
}

// NewDataType builds a fixed-width type (INTEGER, DOUBLE, BOOLEAN).
func NewDataType(tag Tag) DataType {
	return DataType{Tag: tag, MaxLength: -1}
}

// NewBoundedDataType builds a CHAR(n)/VARCHAR(n) type.
func NewBoundedDataType(tag Tag, maxLength int) DataType {
	return DataType{Tag: tag, MaxLength: maxLength}
}

func (d DataType) String() string {
	switch d.Tag {
	case CHAR, VARCHAR:
		return fmt.Sprintf("%s(%d)", d.Tag, d.MaxLength)
	default:
		return d.Tag.String()
	}
}

// Equal compares tag and max length, mirroring the original's
// DataType.equals (not used by the codec itself).
func (d DataType) Equal(other DataType) bool {
	return d.Tag == other.Tag && d.MaxLength == other.MaxLength
}
