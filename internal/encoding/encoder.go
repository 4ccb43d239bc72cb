// Package encoding converts condition rows to a numeric feature matrix and
// back. An Encoder fits a registry of column transforms once; the resulting
// FittedState is immutable and safe to share.
package encoding

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"designspace/domain/condition"
	"designspace/domain/core"
	"designspace/domain/paradigm"
	"designspace/domain/schema"
	"designspace/internal/missingness"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Strategy selects the encoding family
type Strategy string

const (
	// Dense imputes numerics, one-hot encodes categoricals and adds NA flags.
	Dense Strategy = "dense"
	// Sparse keeps undefined cells as NaN and encodes categoricals as ordinals.
	Sparse Strategy = "sparse"
)

// ParseStrategy validates a strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Dense, Sparse:
		return Strategy(s), nil
	case "":
		return Dense, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownStrategy, s)
}

// Options configures fitting
type Options struct {
	Strategy Strategy
	// BinaryCollapse encodes two-code vocabularies as one indicator column.
	// Columns may override it in the schema.
	BinaryCollapse bool
}

// DefaultOptions returns the dense strategy without binary collapse
func DefaultOptions() Options {
	return Options{Strategy: Dense}
}

// Encoder fits column transforms against a schema
type Encoder struct {
	schema *schema.Schema
	opts   Options
}

// NewEncoder creates an encoder
func NewEncoder(s *schema.Schema, opts Options) *Encoder {
	if opts.Strategy == "" {
		opts.Strategy = Dense
	}
	return &Encoder{schema: s, opts: opts}
}

// Fit learns vocabularies, placeholders and scaling from rows. labels may be
// nil, in which case paradigm-conditional placeholders use their fallback.
func (e *Encoder) Fit(rows []condition.Row, labels []paradigm.Paradigm) (*FittedState, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptyDataset
	}
	if labels != nil && len(labels) != len(rows) {
		return nil, core.NewShapeError("labels", len(rows), 1, len(labels), 1)
	}

	var transforms []ColumnTransform
	switch e.opts.Strategy {
	case Dense:
		numeric, err := e.fitDenseNumeric(rows, labels)
		if err != nil {
			return nil, err
		}
		transforms = append(numeric, e.fitDenseCategorical(rows)...)
	case Sparse:
		transforms = append(e.fitSparseNumeric(rows), e.fitSparseCategorical(rows)...)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownStrategy, e.opts.Strategy)
	}

	return newFittedState(e.opts.Strategy, e.schema.Version, transforms), nil
}

func labelAt(labels []paradigm.Paradigm, i int) paradigm.Paradigm {
	if labels == nil {
		return ""
	}
	return labels[i]
}

// centerScale returns the mean and unbiased standard deviation. Degenerate
// columns get scale 1 so every value maps to a finite number.
func centerScale(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 1
	}
	if len(values) == 1 {
		return values[0], 1
	}
	mean, std := stat.MeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return mean, 1
	}
	return mean, std
}

func (e *Encoder) fitDenseNumeric(rows []condition.Row, labels []paradigm.Paradigm) ([]ColumnTransform, error) {
	out := make([]ColumnTransform, 0, len(e.schema.Numeric))
	for _, col := range e.schema.Numeric {
		observed := make([]float64, 0, len(rows))
		for _, r := range rows {
			if v := r.Get(col.Name); v.IsNumber() {
				observed = append(observed, v.Num)
			}
		}
		ph, err := col.Placeholder.Fit(observed)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}

		t := &standardNumeric{name: col.Name, placeholder: ph}
		imputed := make([]float64, len(rows))
		for i, r := range rows {
			imputed[i] = t.impute(r.Get(col.Name), labelAt(labels, i))
		}
		t.center, t.scale = centerScale(imputed)
		out = append(out, t)
	}
	return out, nil
}

func (e *Encoder) collapse(col schema.CategoricalColumn) bool {
	if col.Collapse != nil {
		return *col.Collapse
	}
	return e.opts.BinaryCollapse
}

// vocabulary returns the sorted observed codes. Missing cells take no slot.
func vocabulary(rows []condition.Row, name string) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		if code, ok := categoryOf(r.Get(name)); ok {
			seen[code] = true
		}
	}
	vocab := make([]string, 0, len(seen))
	for code := range seen {
		vocab = append(vocab, code)
	}
	sort.Strings(vocab)
	return vocab
}

func (e *Encoder) fitDenseCategorical(rows []condition.Row) []ColumnTransform {
	var out []ColumnTransform
	for _, col := range e.schema.Categorical {
		out = append(out, newOneHot(col.Name, vocabulary(rows, col.Name), e.collapse(col), false, sawMissing(rows, col.Name)))
	}
	for _, col := range e.schema.YesNo {
		out = append(out, newOneHot(col.Name, vocabulary(rows, col.Name), e.opts.BinaryCollapse, true, sawMissing(rows, col.Name)))
	}
	for _, link := range e.flagLinks(rows) {
		out = append(out, &naFlag{link: link})
	}
	return out
}

// flagLinks returns the declared NA flags plus one for every other numeric
// column that holds N/A in the training rows, in numeric declaration order.
func (e *Encoder) flagLinks(rows []condition.Row) []missingness.Link {
	declared := make(map[string]bool)
	for _, l := range e.schema.FlagLinks() {
		declared[l.Field] = true
	}
	var links []missingness.Link
	for _, col := range e.schema.Numeric {
		if declared[col.Name] || sawNA(rows, col.Name) {
			links = append(links, missingness.NewLink(col.Name))
		}
	}
	return links
}

func sawNA(rows []condition.Row, name string) bool {
	for _, r := range rows {
		if r.Get(name).IsNA() {
			return true
		}
	}
	return false
}

func sawMissing(rows []condition.Row, name string) bool {
	for _, r := range rows {
		if r.Get(name).IsMissing() {
			return true
		}
	}
	return false
}

func (e *Encoder) fitSparseNumeric(rows []condition.Row) []ColumnTransform {
	out := make([]ColumnTransform, 0, len(e.schema.Numeric))
	for _, col := range e.schema.Numeric {
		observed := make([]float64, 0, len(rows))
		for _, r := range rows {
			if v := r.Get(col.Name); v.IsNumber() {
				observed = append(observed, v.Num)
			}
		}
		center, scale := centerScale(observed)
		out = append(out, &sparseNumeric{
			name:   col.Name,
			center: center,
			scale:  scale,
			sawNA:  sawNA(rows, col.Name),
		})
	}
	return out
}

func newOrdinal(name string, values map[string]float64, numericCodes, sawNA bool) *ordinal {
	codes := make([]string, 0, len(values))
	for code := range values {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if values[codes[i]] != values[codes[j]] {
			return values[codes[i]] < values[codes[j]]
		}
		return codes[i] < codes[j]
	})
	return &ordinal{name: name, codes: codes, values: values, numericCodes: numericCodes, sawNA: sawNA}
}

func (e *Encoder) fitSparseCategorical(rows []condition.Row) []ColumnTransform {
	var out []ColumnTransform
	for _, col := range e.schema.Categorical {
		values := col.Ordinal
		if len(values) == 0 {
			values = make(map[string]float64)
			i := 0
			for _, code := range vocabulary(rows, col.Name) {
				if code == condition.NA {
					continue
				}
				values[code] = float64(i)
				i++
			}
		}
		out = append(out, newOrdinal(col.Name, values, false, sawNA(rows, col.Name)))
	}
	for _, col := range e.schema.YesNo {
		values := map[string]float64{"0": 0, "1": 1}
		out = append(out, newOrdinal(col.Name, values, true, sawNA(rows, col.Name)))
	}
	return out
}

// FittedState is the immutable result of Fit. The zero value is unfitted and
// every operation on it returns core.ErrNotFitted.
type FittedState struct {
	strategy      Strategy
	schemaVersion string
	transforms    []ColumnTransform
	names         []string
	sources       []string
	offsets       []int
	width         int
}

func newFittedState(strategy Strategy, version string, transforms []ColumnTransform) *FittedState {
	fs := &FittedState{strategy: strategy, schemaVersion: version, transforms: transforms}
	for _, t := range transforms {
		fs.offsets = append(fs.offsets, fs.width)
		fs.width += t.Width()
		for _, name := range t.FeatureNames() {
			fs.names = append(fs.names, name)
			fs.sources = append(fs.sources, t.Source())
		}
	}
	return fs
}

func (fs *FittedState) fitted() error {
	if fs == nil || fs.transforms == nil {
		return core.ErrNotFitted
	}
	return nil
}

// Strategy returns the strategy the state was fitted with
func (fs *FittedState) Strategy() Strategy { return fs.strategy }

// SchemaVersion returns the version of the schema the state was fitted with
func (fs *FittedState) SchemaVersion() string { return fs.schemaVersion }

// Width returns the number of encoded columns
func (fs *FittedState) Width() int { return fs.width }

// Transforms exposes the fitted registry in layout order.
func (fs *FittedState) Transforms() []ColumnTransform {
	return append([]ColumnTransform(nil), fs.transforms...)
}

// FeatureNames returns the encoded column names in layout order.
func (fs *FittedState) FeatureNames() []string {
	return append([]string(nil), fs.names...)
}

// FeatureSources returns, per encoded column, the schema column it derives
// from. Flag columns report their linked field.
func (fs *FittedState) FeatureSources() []string {
	return append([]string(nil), fs.sources...)
}

// LayoutHash fingerprints the column layout
func (fs *FittedState) LayoutHash() core.Hash {
	return core.ComputeLayoutHash(fs.names)
}

// EncodeRow encodes a single row
func (fs *FittedState) EncodeRow(row condition.Row, p paradigm.Paradigm) ([]float64, error) {
	if err := fs.fitted(); err != nil {
		return nil, err
	}
	out := make([]float64, fs.width)
	fs.encodeInto(row, p, out)
	return out, nil
}

func (fs *FittedState) encodeInto(row condition.Row, p paradigm.Paradigm, dst []float64) {
	for i, t := range fs.transforms {
		off := fs.offsets[i]
		t.Encode(row, p, dst[off:off+t.Width()])
	}
}

// Encode produces one matrix row per input row, in input order.
func (fs *FittedState) Encode(rows []condition.Row, labels []paradigm.Paradigm) (*mat.Dense, error) {
	if err := fs.fitted(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.ErrEmptyDataset
	}
	if labels != nil && len(labels) != len(rows) {
		return nil, core.NewShapeError("labels", len(rows), 1, len(labels), 1)
	}
	m := mat.NewDense(len(rows), fs.width, nil)
	for i, r := range rows {
		fs.encodeInto(r, labelAt(labels, i), m.RawRowView(i))
	}
	return m, nil
}

// DecodeRow inverts one encoded vector. The returned row has no ID.
func (fs *FittedState) DecodeRow(vec []float64) (condition.Row, error) {
	if err := fs.fitted(); err != nil {
		return condition.Row{}, err
	}
	if len(vec) != fs.width {
		return condition.Row{}, core.NewShapeError("encoded vector", 1, fs.width, 1, len(vec))
	}
	out := condition.NewRow("")
	for i, t := range fs.transforms {
		off := fs.offsets[i]
		t.Decode(vec[off:off+t.Width()], out)
	}
	return out, nil
}

// Decode inverts every row of an encoded matrix.
func (fs *FittedState) Decode(m mat.Matrix) ([]condition.Row, error) {
	if err := fs.fitted(); err != nil {
		return nil, err
	}
	r, c := m.Dims()
	if c != fs.width {
		return nil, core.NewShapeError("encoded matrix", r, fs.width, r, c)
	}
	rows := make([]condition.Row, r)
	vec := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(vec, i, m)
		row, err := fs.DecodeRow(vec)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

// Features names the values of an encoded vector.
func (fs *FittedState) Features(vec []float64) (map[string]float64, error) {
	if err := fs.fitted(); err != nil {
		return nil, err
	}
	if len(vec) != fs.width {
		return nil, core.NewShapeError("encoded vector", 1, fs.width, 1, len(vec))
	}
	out := make(map[string]float64, len(vec))
	for i, name := range fs.names {
		out[name] = vec[i]
	}
	return out, nil
}

// FlagLinks returns the NA indicators the state encodes, declared and derived.
func (fs *FittedState) FlagLinks() []missingness.Link {
	var links []missingness.Link
	for _, t := range fs.transforms {
		if f, ok := t.(*naFlag); ok {
			links = append(links, f.link)
		}
	}
	return links
}

// Vocabulary returns the fitted codes of a one-hot column, or nil.
func (fs *FittedState) Vocabulary(column string) []string {
	for _, t := range fs.transforms {
		if oh, ok := t.(*oneHot); ok && oh.name == column {
			return append([]string(nil), oh.vocab...)
		}
	}
	return nil
}

// String summarizes the state for logs.
func (fs *FittedState) String() string {
	if fs.fitted() != nil {
		return "encoding(unfitted)"
	}
	return "encoding(" + string(fs.strategy) + ", " + strconv.Itoa(fs.width) + " cols, " + fs.LayoutHash().Short() + ")"
}
