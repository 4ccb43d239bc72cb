// Package schema holds the versioned description of the design-space table:
// which columns exist, how each is cleaned, encoded, imputed and grouped into
// views. A Schema is built once and passed by reference; alternate versions
// coexist as separate values.
package schema

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"designspace/domain/core"
	"designspace/domain/paradigm"
	"designspace/internal/missingness"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Cleaner selects the scalar cleaner for a numeric column.
type Cleaner string

const (
	CleanNumeric    Cleaner = "numeric"
	CleanDuration   Cleaner = "duration"
	CleanPercentage Cleaner = "percentage"
)

// Schema is the complete column configuration
type Schema struct {
	Version        string              `yaml:"version"`
	IDColumn       string              `yaml:"id_column"`
	Numeric        []NumericColumn     `yaml:"numeric"`
	Categorical    []CategoricalColumn `yaml:"categorical"`
	YesNo          []YesNoColumn       `yaml:"yes_no"`
	Views          map[string][]string `yaml:"views"`
	Paradigm       paradigm.Config     `yaml:"paradigm"`
	Repair         RepairSpec          `yaml:"repair"`
	SummaryColumns []string            `yaml:"summary_columns"`

	viewOf map[string]string
}

// NumericColumn declares a numeric field
type NumericColumn struct {
	Name        string             `yaml:"name"`
	Cleaner     Cleaner            `yaml:"cleaner"`
	Range       *Range             `yaml:"range,omitempty"`
	NAFlag      bool               `yaml:"na_flag"`
	Placeholder missingness.Policy `yaml:"placeholder"`
}

// Range is the human scale of a column that is min-max normalized to [0,1]
// during cleaning.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Normalize maps a human-scale value to [0,1]
func (r Range) Normalize(v float64) float64 {
	return (v - r.Min) / (r.Max - r.Min)
}

// Denormalize maps a normalized value back to the human scale, e.g. v*4+1 for
// a 1-5 rating.
func (r Range) Denormalize(v float64) float64 {
	return v*(r.Max-r.Min) + r.Min
}

// CategoricalColumn declares a categorical field
type CategoricalColumn struct {
	Name string `yaml:"name"`
	// Aliases normalize free text to a canonical code; first match wins.
	Aliases []Alias `yaml:"aliases,omitempty"`
	// Fallback is used when aliases are declared and none matches.
	Fallback string `yaml:"fallback,omitempty"`
	// Ordinal maps codes to numbers for the sparse (factor) strategy.
	Ordinal map[string]float64 `yaml:"ordinal,omitempty"`
	// Collapse overrides the encoder's binary-collapse option for this column.
	Collapse *bool `yaml:"collapse,omitempty"`
}

// Alias maps raw text containing a substring to a code
type Alias struct {
	Contains string `yaml:"contains"`
	Code     string `yaml:"code"`
}

// YesNoColumn declares a yes/no field encoded as 0/1
type YesNoColumn struct {
	Name string `yaml:"name"`
}

// RepairSpec configures the single-task consistency vote
type RepairSpec struct {
	Signals          []Signal `yaml:"signals"`
	SecondTaskFields []string `yaml:"second_task_fields"`
}

// Signal is one vote. Exactly one of Equals, Above, Below is set: Equals and
// Below read the decoded row, Above reads the raw reconstructed feature.
type Signal struct {
	Column string   `yaml:"column"`
	Equals string   `yaml:"equals,omitempty"`
	Above  *float64 `yaml:"above,omitempty"`
	Below  *float64 `yaml:"below,omitempty"`
}

// Default returns the embedded schema
func Default() (*Schema, error) {
	return Parse(defaultYAML)
}

// MustDefault is Default for package-level fixtures and tests.
func MustDefault() *Schema {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Load reads a schema file
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML schema
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSchema, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.index()
	return &s, nil
}

// Validate checks internal consistency
func (s *Schema) Validate() error {
	if s.IDColumn == "" {
		return core.NewSchemaError("id_column", "required")
	}
	seen := map[string]bool{s.IDColumn: true}
	claim := func(name string) error {
		if strings.TrimSpace(name) == "" {
			return core.NewSchemaError("column", "empty name")
		}
		if seen[name] {
			return core.NewSchemaError(name, "declared twice")
		}
		seen[name] = true
		return nil
	}

	for _, c := range s.Numeric {
		if err := claim(c.Name); err != nil {
			return err
		}
		switch c.Cleaner {
		case CleanNumeric, CleanDuration, CleanPercentage:
		default:
			return core.NewSchemaError(c.Name, fmt.Sprintf("unknown cleaner %q", c.Cleaner))
		}
		if c.Range != nil && !(c.Range.Max > c.Range.Min) {
			return core.NewSchemaError(c.Name, "range max must exceed min")
		}
		if err := c.Placeholder.Validate(); err != nil {
			return core.NewSchemaError(c.Name, err.Error())
		}
	}
	for _, c := range s.Categorical {
		if err := claim(c.Name); err != nil {
			return err
		}
		for code, v := range c.Ordinal {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return core.NewSchemaError(c.Name, fmt.Sprintf("ordinal for %q must be finite", code))
			}
		}
	}
	for _, c := range s.YesNo {
		if err := claim(c.Name); err != nil {
			return err
		}
	}
	for view, cols := range s.Views {
		for _, col := range cols {
			if !seen[col] {
				return core.NewSchemaError("views."+view, fmt.Sprintf("unknown column %q", col))
			}
		}
	}

	for _, sig := range s.Repair.Signals {
		set := 0
		if sig.Equals != "" {
			set++
		}
		if sig.Above != nil {
			set++
		}
		if sig.Below != nil {
			set++
		}
		if set != 1 {
			return core.NewSchemaError("repair.signals."+sig.Column, "exactly one of equals, above, below is required")
		}
	}
	for _, f := range s.Repair.SecondTaskFields {
		if !seen[f] {
			return core.NewSchemaError("repair.second_task_fields", fmt.Sprintf("unknown column %q", f))
		}
	}
	return nil
}

func (s *Schema) index() {
	s.viewOf = make(map[string]string)
	for view, cols := range s.Views {
		for _, col := range cols {
			s.viewOf[col] = view
		}
	}
}

// ViewOf returns the conceptual view of a source column, or "" if unmapped.
func (s *Schema) ViewOf(column string) string {
	return s.viewOf[column]
}

// ViewNames returns the view names in alphabetical order.
func (s *Schema) ViewNames() []string {
	names := make([]string, 0, len(s.Views))
	for v := range s.Views {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

// Columns returns every raw column name in declaration order, id first.
func (s *Schema) Columns() []string {
	cols := []string{s.IDColumn}
	for _, c := range s.Numeric {
		cols = append(cols, c.Name)
	}
	for _, c := range s.Categorical {
		cols = append(cols, c.Name)
	}
	for _, c := range s.YesNo {
		cols = append(cols, c.Name)
	}
	return cols
}

// FlagLinks returns the derived NA indicators in numeric declaration order.
func (s *Schema) FlagLinks() []missingness.Link {
	var links []missingness.Link
	for _, c := range s.Numeric {
		if c.NAFlag {
			links = append(links, missingness.NewLink(c.Name))
		}
	}
	return links
}

// NumericByName finds a numeric column declaration
func (s *Schema) NumericByName(name string) (NumericColumn, bool) {
	for _, c := range s.Numeric {
		if c.Name == name {
			return c, true
		}
	}
	return NumericColumn{}, false
}

// CategoricalByName finds a categorical column declaration
func (s *Schema) CategoricalByName(name string) (CategoricalColumn, bool) {
	for _, c := range s.Categorical {
		if c.Name == name {
			return c, true
		}
	}
	return CategoricalColumn{}, false
}

// IsYesNo reports whether name is a declared yes/no column
func (s *Schema) IsYesNo(name string) bool {
	for _, c := range s.YesNo {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Hash fingerprints the schema content
func (s *Schema) Hash() core.Hash {
	data, err := yaml.Marshal(s)
	if err != nil {
		return core.NewHash([]byte(s.Version))
	}
	return core.NewHash(data)
}

// NearestOrdinal snaps v to the closest declared ordinal value of column and
// returns its code. Ties go to the code declared with the lower value.
func (c CategoricalColumn) NearestOrdinal(v float64) (string, bool) {
	if len(c.Ordinal) == 0 || math.IsNaN(v) {
		return "", false
	}
	codes := make([]string, 0, len(c.Ordinal))
	for code := range c.Ordinal {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if c.Ordinal[codes[i]] != c.Ordinal[codes[j]] {
			return c.Ordinal[codes[i]] < c.Ordinal[codes[j]]
		}
		return codes[i] < codes[j]
	})

	best, bestDist := codes[0], math.Inf(1)
	for _, code := range codes {
		if d := math.Abs(c.Ordinal[code] - v); d < bestDist {
			best, bestDist = code, d
		}
	}
	return best, true
}
