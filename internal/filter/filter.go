// Package filter evaluates AND-combined column predicates against sheet rows.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sheetfold/sheetfold/internal/richtext"
)

type Op string

const (
	OpEquals         Op = "equals"
	OpNotEquals      Op = "does not equal"
	OpContains       Op = "contains"
	OpNotContains    Op = "does not contain"
	OpStartsWith     Op = "starts with"
	OpEndsWith       Op = "ends with"
	OpEmpty          Op = "is empty"
	OpNotEmpty       Op = "is not empty"
	OpGreater        Op = "greater than"
	OpLess           Op = "less than"
	OpGreaterOrEqual Op = "greater than or equal"
	OpLessOrEqual    Op = "less than or equal"
)

var ops = []Op{
	OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith,
	OpEmpty, OpNotEmpty, OpGreater, OpLess, OpGreaterOrEqual, OpLessOrEqual,
}

func ParseOp(name string) (Op, error) {
	for _, op := range ops {
		if string(op) == name {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown condition %q", name)
}

type Condition struct {
	Column int
	Op     Op
	Value  string
}

// Row is one sheet row with its absolute 1-based sheet row number.
type Row struct {
	Number int
	Cells  []string
}

// Cell returns the cell at idx or "" when the row is short.
func (r Row) Cell(idx int) string {
	if idx < 0 || idx >= len(r.Cells) {
		return ""
	}
	return r.Cells[idx]
}

// Apply keeps rows for which every condition holds, in their original order.
// Rows whose Number equals headerRow (when > 0) are always kept.
func Apply(rows []Row, conds []Condition, headerRow int) []Row {
	if len(conds) == 0 {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if headerRow > 0 && row.Number == headerRow {
			out = append(out, row)
			continue
		}
		if Match(row, conds) {
			out = append(out, row)
		}
	}
	return out
}

func Match(row Row, conds []Condition) bool {
	for _, c := range conds {
		if !c.Eval(row.Cell(c.Column)) {
			return false
		}
	}
	return true
}

// Eval compares the tag-stripped, trimmed cell text with the condition value.
func (c Condition) Eval(cell string) bool {
	value := strings.TrimSpace(richtext.StripTags(cell))
	want := strings.TrimSpace(c.Value)
	lv, lw := strings.ToLower(value), strings.ToLower(want)

	switch c.Op {
	case OpEquals:
		return lv == lw
	case OpNotEquals:
		return lv != lw
	case OpContains:
		return strings.Contains(lv, lw)
	case OpNotContains:
		return !strings.Contains(lv, lw)
	case OpStartsWith:
		return strings.HasPrefix(lv, lw)
	case OpEndsWith:
		return strings.HasSuffix(lv, lw)
	case OpEmpty:
		return value == ""
	case OpNotEmpty:
		return value != ""
	case OpGreater, OpLess, OpGreaterOrEqual, OpLessOrEqual:
		return compareNumbers(c.Op, value, want)
	default:
		return true
	}
}

func compareNumbers(op Op, value, want string) bool {
	a, ok := leadingFloat(value)
	if !ok {
		return false
	}
	b, ok := leadingFloat(want)
	if !ok {
		return false
	}
	switch op {
	case OpGreater:
		return a > b
	case OpLess:
		return a < b
	case OpGreaterOrEqual:
		return a >= b
	default:
		return a <= b
	}
}

// leadingFloat parses the longest numeric prefix, so "12 items" reads as 12.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for end := len(s); end > 0; end-- {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
