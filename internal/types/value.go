package types

import "fmt"

// ValueKind distinguishes which field of a Value is live. Kinds line up
// 1:1 with Tag, plus Null for an absent attribute.
type ValueKind int

const (
	Null ValueKind = iota
	Int
	Double
	Bool
	String
)

// Value is the per-type variant design note 9 asks for in place of a
// dynamic Object bag: exactly one of the typed fields is meaningful,
// selected by Kind.
type Value struct {
	Kind   ValueKind
	Int    int32
	Double float64
	Bool   bool
	Str    string
}

func NullValue() Value             { return Value{Kind: Null} }
func IntValue(v int32) Value       { return Value{Kind: Int, Int: v} }
func DoubleValue(v float64) Value  { return Value{Kind: Double, Double: v} }
func BoolValue(v bool) Value       { return Value{Kind: Bool, Bool: v} }
func StringValue(v string) Value   { return Value{Kind: String, Str: v} }

func (v Value) IsNull() bool { return v.Kind == Null }

// Equal implements the value-level equality the PK scan needs. Values
// of different kinds are never equal, mirroring Object.equals on
// mismatched boxed types in the original.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case Null:
		return true
	case Int:
		return v.Int == other.Int
	case Double:
		return v.Double == other.Double
	case Bool:
		return v.Bool == other.Bool
	case String:
		return v.Str == other.Str
	default:
		return false
	}
}

// String renders a cell the way formatSelectCell does: "NULL" for a
// null value, the bare scalar otherwise.
func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "NULL"
	case Int:
		return fmt.Sprintf("%d", v.Int)
	case Double:
		return fmt.Sprintf("%g", v.Double)
	case Bool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case String:
		return v.Str
	default:
		return ""
	}
}
