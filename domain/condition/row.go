package condition

import "sort"

// Row is one experimental condition: an identifying label plus named fields.
// Field names are stable strings, never positions.
type Row struct {
	ID     string           `json:"id"`
	Fields map[string]Value `json:"fields"`
}

// NewRow creates an empty row
func NewRow(id string) Row {
	return Row{ID: id, Fields: make(map[string]Value)}
}

// Get returns the field value; absent fields read as missing.
func (r Row) Get(name string) Value {
	if v, ok := r.Fields[name]; ok {
		return v
	}
	return Missing()
}

// Set stores a field value
func (r Row) Set(name string, v Value) {
	r.Fields[name] = v
}

// Clone returns a deep copy
func (r Row) Clone() Row {
	out := NewRow(r.ID)
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}

// Names returns the field names in sorted order.
func (r Row) Names() []string {
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Strings renders the listed columns in order, for tabular export.
func (r Row) Strings(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r.Get(c).String()
	}
	return out
}

// RawRow is a row as delivered by a row source: header name to trimmed cell text.
type RawRow map[string]string

// RawTable is an ordered set of raw rows with their header.
type RawTable struct {
	Headers []string
	Rows    []RawRow
}
