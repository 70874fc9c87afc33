package sqlmini

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"jottdb/internal/types"
)

// CoerceValue turns a literal token into a typed Value for attr's
// declared type. DOUBLE literals go through shopspring/decimal first,
// the way the MySQL-server pack parses DECIMAL/numeric literals before
// narrowing — it avoids the literal "0.1" silently becoming a
// different float64 than the one a naive strconv.ParseFloat would
// produce for longer decimal strings.
func CoerceValue(tok Token, dt types.DataType) (types.Value, error) {
	if tok.Type == KEYWORD && tok.Literal == "NULL" {
		return types.NullValue(), nil
	}

	switch dt.Tag {
	case types.INTEGER:
		if tok.Type != INT {
			return types.Value{}, fmt.Errorf("sqlmini: expected an INTEGER literal, got %q", tok.Literal)
		}
		n, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			return types.Value{}, fmt.Errorf("sqlmini: invalid INTEGER literal %q: %w", tok.Literal, err)
		}
		return types.IntValue(int32(n)), nil

	case types.DOUBLE:
		if tok.Type != INT && tok.Type != FLOAT {
			return types.Value{}, fmt.Errorf("sqlmini: expected a DOUBLE literal, got %q", tok.Literal)
		}
		d, err := decimal.NewFromString(tok.Literal)
		if err != nil {
			return types.Value{}, fmt.Errorf("sqlmini: invalid DOUBLE literal %q: %w", tok.Literal, err)
		}
		f, _ := d.Float64()
		return types.DoubleValue(f), nil

	case types.BOOLEAN:
		if tok.Type != KEYWORD || (tok.Literal != "TRUE" && tok.Literal != "FALSE") {
			return types.Value{}, fmt.Errorf("sqlmini: expected TRUE or FALSE, got %q", tok.Literal)
		}
		return types.BoolValue(tok.Literal == "TRUE"), nil

	case types.CHAR, types.VARCHAR:
		if tok.Type != STRING {
			return types.Value{}, fmt.Errorf("sqlmini: expected a string literal, got %q", tok.Literal)
		}
		return types.StringValue(tok.Literal), nil

	default:
		return types.Value{}, fmt.Errorf("sqlmini: unknown data type tag %v", dt.Tag)
	}
}
