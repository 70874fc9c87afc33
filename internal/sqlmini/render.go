package sqlmini

import (
	"strconv"
	"strings"

	"jottdb/internal/types"
)

// RenderSelect draws an ASCII bordered table for a SELECT * result,
// grounded on StorageManager.java's buildSelectBorder/buildSelectHeader/
// buildSelectRow/formatSelectCell: column widths sized to the widest
// header or cell, NULL rendered as the literal "NULL".
func RenderSelect(schema *types.TableSchema, rows [][]types.Value) string {
	headers := make([]string, schema.AttributeCount())
	widths := make([]int, schema.AttributeCount())
	for i, attr := range schema.Attributes {
		headers[i] = attr.Name
		widths[i] = len(attr.Name)
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(row))
		for c, v := range row {
			s := formatSelectCell(v)
			cells[r][c] = s
			if len(s) > widths[c] {
				widths[c] = len(s)
			}
		}
	}

	var b strings.Builder
	border := buildSelectBorder(widths)
	b.WriteString(border)
	b.WriteString(buildSelectRow(headers, widths))
	b.WriteString(border)
	for _, row := range cells {
		b.WriteString(buildSelectRow(row, widths))
	}
	b.WriteString(border)
	return b.String()
}

func buildSelectBorder(widths []int) string {
	var b strings.Builder
	for _, w := range widths {
		b.WriteByte('+')
		b.WriteString(strings.Repeat("-", w+2))
	}
	b.WriteString("+\n")
	return b.String()
}

func buildSelectRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, c := range cells {
		b.WriteByte('|')
		b.WriteByte(' ')
		b.WriteString(c)
		b.WriteString(strings.Repeat(" ", widths[i]-len(c)))
		b.WriteByte(' ')
	}
	b.WriteString("|\n")
	return b.String()
}

func formatSelectCell(v types.Value) string {
	switch v.Kind {
	case types.Null:
		return "NULL"
	case types.Int:
		return strconv.FormatInt(int64(v.Int), 10)
	case types.Double:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case types.Bool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case types.String:
		return v.Str
	default:
		return ""
	}
}
