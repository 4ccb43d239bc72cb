package encoding

import (
	"math"
	"strconv"

	"designspace/domain/condition"
	"designspace/domain/paradigm"
	"designspace/internal/missingness"
)

// zeroTolerance absorbs round-off from a lossless decomposition when testing
// for an empty one-hot block.
const zeroTolerance = 1e-9

// ColumnTransform is one fitted entry of the registry. Encode writes exactly
// Width values into dst; Decode reads Width values and sets its field on out.
type ColumnTransform interface {
	Source() string
	Width() int
	FeatureNames() []string
	Encode(row condition.Row, p paradigm.Paradigm, dst []float64)
	Decode(src []float64, out condition.Row)
}

// categoryOf reads a cell as a category code. Missing cells have no code.
func categoryOf(v condition.Value) (string, bool) {
	return v.CategoryCode()
}

// valueOf turns a decoded code back into a cell.
func valueOf(code string, numericCodes bool) condition.Value {
	if numericCodes && code != condition.NA {
		if f, err := strconv.ParseFloat(code, 64); err == nil {
			return condition.Number(f)
		}
	}
	return condition.Category(code)
}

// standardNumeric imputes undefined cells with a fitted placeholder and
// standardizes.
type standardNumeric struct {
	name        string
	placeholder missingness.Placeholder
	center      float64
	scale       float64
}

func (t *standardNumeric) Source() string         { return t.name }
func (t *standardNumeric) Width() int             { return 1 }
func (t *standardNumeric) FeatureNames() []string { return []string{t.name} }

func (t *standardNumeric) impute(v condition.Value, p paradigm.Paradigm) float64 {
	if v.IsNumber() {
		return v.Num
	}
	return t.placeholder.Value(p)
}

func (t *standardNumeric) Encode(row condition.Row, p paradigm.Paradigm, dst []float64) {
	dst[0] = (t.impute(row.Get(t.name), p) - t.center) / t.scale
}

func (t *standardNumeric) Decode(src []float64, out condition.Row) {
	out.Set(t.name, condition.Number(src[0]*t.scale+t.center))
}

// oneHot expands a categorical column over its fitted vocabulary, or
// collapses a two-code vocabulary to a single indicator of the second code.
// Missing cells encode as an all-zero block; when the column had missing
// cells during fit, an all-zero block decodes back to missing.
type oneHot struct {
	name         string
	vocab        []string
	index        map[string]int
	collapse     bool
	numericCodes bool
	sawMissing   bool
}

func newOneHot(name string, vocab []string, collapse, numericCodes, sawMissing bool) *oneHot {
	index := make(map[string]int, len(vocab))
	for i, code := range vocab {
		index[code] = i
	}
	return &oneHot{
		name:         name,
		vocab:        vocab,
		index:        index,
		collapse:     collapse && len(vocab) == 2 && !sawMissing,
		numericCodes: numericCodes,
		sawMissing:   sawMissing,
	}
}

func (t *oneHot) Source() string { return t.name }

func (t *oneHot) Width() int {
	if t.collapse {
		return 1
	}
	return len(t.vocab)
}

func (t *oneHot) FeatureNames() []string {
	if t.collapse {
		return []string{t.name + "_" + t.vocab[1]}
	}
	names := make([]string, len(t.vocab))
	for i, code := range t.vocab {
		names[i] = t.name + "_" + code
	}
	return names
}

// lookup resolves a code to its vocabulary slot. Unknown codes read as N/A;
// -1 means the block stays all zero.
func (t *oneHot) lookup(code string) int {
	if i, ok := t.index[code]; ok {
		return i
	}
	if i, ok := t.index[condition.NA]; ok {
		return i
	}
	return -1
}

func (t *oneHot) Encode(row condition.Row, _ paradigm.Paradigm, dst []float64) {
	slot := -1
	if code, ok := categoryOf(row.Get(t.name)); ok {
		slot = t.lookup(code)
	}
	if t.collapse {
		dst[0] = 0
		if slot == 1 {
			dst[0] = 1
		}
		return
	}
	for i := range dst[:len(t.vocab)] {
		dst[i] = 0
	}
	if slot >= 0 {
		dst[slot] = 1
	}
}

func (t *oneHot) Decode(src []float64, out condition.Row) {
	if t.collapse {
		code := t.vocab[0]
		if src[0] >= missingness.FlagThreshold {
			code = t.vocab[1]
		}
		out.Set(t.name, valueOf(code, t.numericCodes))
		return
	}

	block := src[:len(t.vocab)]
	allZero := true
	for _, x := range block {
		if math.Abs(x) > zeroTolerance {
			allZero = false
			break
		}
	}
	if allZero {
		if t.sawMissing {
			out.Set(t.name, condition.Missing())
		} else {
			out.Set(t.name, condition.NotApplicable())
		}
		return
	}

	best, bestDist := 0, math.Inf(1)
	for i, x := range block {
		if d := math.Abs(x - 1); d < bestDist {
			best, bestDist = i, d
		}
	}
	out.Set(t.name, valueOf(t.vocab[best], t.numericCodes))
}

// naFlag is the derived "<field> is NA" indicator. Its Decode runs after the
// linked field's own transform and overrides it.
type naFlag struct {
	link missingness.Link
}

func (t *naFlag) Source() string         { return t.link.Field }
func (t *naFlag) Width() int             { return 1 }
func (t *naFlag) FeatureNames() []string { return []string{t.link.Flag} }

func (t *naFlag) Encode(row condition.Row, _ paradigm.Paradigm, dst []float64) {
	dst[0] = missingness.Indicator(row.Get(t.link.Field))
}

func (t *naFlag) Decode(src []float64, out condition.Row) {
	if missingness.IsFlagged(src[0]) {
		out.Set(t.link.Field, condition.NotApplicable())
	}
}

// sparseNumeric standardizes defined cells and leaves every other cell NaN.
type sparseNumeric struct {
	name   string
	center float64
	scale  float64
	sawNA  bool
}

func (t *sparseNumeric) Source() string         { return t.name }
func (t *sparseNumeric) Width() int             { return 1 }
func (t *sparseNumeric) FeatureNames() []string { return []string{t.name} }

func (t *sparseNumeric) Encode(row condition.Row, _ paradigm.Paradigm, dst []float64) {
	v := row.Get(t.name)
	if !v.IsNumber() {
		dst[0] = math.NaN()
		return
	}
	dst[0] = (v.Num - t.center) / t.scale
}

func (t *sparseNumeric) Decode(src []float64, out condition.Row) {
	out.Set(t.name, undefinedOr(src[0], t.sawNA, func(x float64) condition.Value {
		return condition.Number(x*t.scale + t.center)
	}))
}

// ordinal maps category codes to numbers; N/A and unknown codes become NaN.
type ordinal struct {
	name         string
	codes        []string // ascending by value
	values       map[string]float64
	numericCodes bool
	sawNA        bool
}

func (t *ordinal) Source() string         { return t.name }
func (t *ordinal) Width() int             { return 1 }
func (t *ordinal) FeatureNames() []string { return []string{t.name} }

func (t *ordinal) Encode(row condition.Row, _ paradigm.Paradigm, dst []float64) {
	v := row.Get(t.name)
	if t.numericCodes && v.IsNumber() {
		dst[0] = v.Num
		return
	}
	if code, ok := categoryOf(v); ok {
		if x, ok := t.values[code]; ok {
			dst[0] = x
			return
		}
	}
	dst[0] = math.NaN()
}

func (t *ordinal) Decode(src []float64, out condition.Row) {
	out.Set(t.name, undefinedOr(src[0], t.sawNA, func(x float64) condition.Value {
		if len(t.codes) == 0 {
			return condition.Number(x)
		}
		best, bestDist := t.codes[0], math.Inf(1)
		for _, code := range t.codes {
			if d := math.Abs(t.values[code] - x); d < bestDist {
				best, bestDist = code, d
			}
		}
		return valueOf(best, t.numericCodes)
	}))
}

// undefinedOr decodes NaN as N/A for columns that were ever N/A during fit and
// as missing otherwise.
func undefinedOr(x float64, sawNA bool, decode func(float64) condition.Value) condition.Value {
	if math.IsNaN(x) {
		if sawNA {
			return condition.NotApplicable()
		}
		return condition.Missing()
	}
	return decode(x)
}
