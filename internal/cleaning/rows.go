package cleaning

import (
	"strings"

	"designspace/domain/condition"
	"designspace/domain/schema"
)

// RowCleaner applies a schema's per-column cleaners to raw rows.
type RowCleaner struct {
	schema *schema.Schema
}

// NewRowCleaner creates a cleaner bound to a schema
func NewRowCleaner(s *schema.Schema) *RowCleaner {
	return &RowCleaner{schema: s}
}

// CleanRow converts one raw row. Columns absent from the raw row are missing.
func (c *RowCleaner) CleanRow(raw condition.RawRow) condition.Row {
	row := condition.NewRow(strings.TrimSpace(raw[c.schema.IDColumn]))

	for _, col := range c.schema.Numeric {
		text := raw[col.Name]
		var v condition.Value
		switch col.Cleaner {
		case schema.CleanDuration:
			v = CleanDurationLike(text)
		case schema.CleanPercentage:
			v = condition.Number(CleanPercentage(text))
		default:
			v = CleanNumeric(text)
		}
		if col.Range != nil && v.IsNumber() {
			v = condition.Number(col.Range.Normalize(v.Num))
		}
		row.Set(col.Name, v)
	}
	for _, col := range c.schema.Categorical {
		row.Set(col.Name, CleanCategory(raw[col.Name], col))
	}
	for _, col := range c.schema.YesNo {
		row.Set(col.Name, CleanYesNo(raw[col.Name]))
	}
	return row
}

// CleanTable converts every row of a raw table, preserving order.
func (c *RowCleaner) CleanTable(table condition.RawTable) []condition.Row {
	rows := make([]condition.Row, len(table.Rows))
	for i, raw := range table.Rows {
		rows[i] = c.CleanRow(raw)
	}
	return rows
}

// CleanCategory normalizes free text to a canonical code. Aliases match by
// case-insensitive substring, first match wins; when aliases are declared and
// none match, the column fallback applies.
func CleanCategory(raw string, col schema.CategoricalColumn) condition.Value {
	s := strings.TrimSpace(raw)
	if isUnspecified(s) {
		return condition.Missing()
	}
	if isNA(s) {
		return condition.NotApplicable()
	}
	if len(col.Aliases) == 0 {
		return condition.Category(s)
	}

	lower := strings.ToLower(s)
	for _, a := range col.Aliases {
		if strings.Contains(lower, strings.ToLower(a.Contains)) {
			return condition.Category(a.Code)
		}
	}
	if col.Fallback != "" {
		return condition.Category(col.Fallback)
	}
	return condition.Category(s)
}
