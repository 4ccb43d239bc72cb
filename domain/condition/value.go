package condition

import (
	"fmt"
	"math"
	"strconv"
)

// NA is the literal marker for a structurally inapplicable field.
const NA = "N/A"

// Kind defines the storage state of a Value
type Kind uint8

const (
	KindMissing Kind = iota // data-entry gap, value unknown
	KindNA                  // structurally inapplicable, a real category
	KindNumber
	KindCategory
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNA:
		return "na"
	case KindNumber:
		return "number"
	case KindCategory:
		return "category"
	}
	return "invalid"
}

// Value is one cell of a condition row. Exactly one of the four kinds; N/A and
// missing are never conflated.
type Value struct {
	Kind Kind    `json:"kind"`
	Num  float64 `json:"num,omitempty"`
	Code string  `json:"code,omitempty"`
}

// Number creates a numeric value. NaN is stored as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{Kind: KindNumber, Num: f}
}

// Category creates a categorical value. The literal NA code is stored as N/A and
// the empty string as missing.
func Category(code string) Value {
	switch code {
	case "":
		return Missing()
	case NA:
		return NotApplicable()
	}
	return Value{Kind: KindCategory, Code: code}
}

// NotApplicable creates an N/A value
func NotApplicable() Value {
	return Value{Kind: KindNA}
}

// Missing creates a missing value
func Missing() Value {
	return Value{Kind: KindMissing}
}

func (v Value) IsMissing() bool { return v.Kind == KindMissing }
func (v Value) IsNA() bool      { return v.Kind == KindNA }
func (v Value) IsNumber() bool  { return v.Kind == KindNumber }

// IsDefined reports a value that is neither missing nor N/A.
func (v Value) IsDefined() bool {
	return v.Kind == KindNumber || v.Kind == KindCategory
}

// Float returns the numeric value, or NaN when the value is not a number.
func (v Value) Float() float64 {
	if v.Kind == KindNumber {
		return v.Num
	}
	return math.NaN()
}

// CategoryCode returns the category key used by encoders. N/A maps to the NA
// literal so that it takes part in vocabularies as a first-class code.
func (v Value) CategoryCode() (string, bool) {
	switch v.Kind {
	case KindNA:
		return NA, true
	case KindCategory:
		return v.Code, true
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64), true
	}
	return "", false
}

// String returns the human-readable form written to reports.
func (v Value) String() string {
	switch v.Kind {
	case KindMissing:
		return ""
	case KindNA:
		return NA
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindCategory:
		return v.Code
	}
	return fmt.Sprintf("<invalid kind %d>", v.Kind)
}

// Equal compares kind and payload. Numbers compare exactly.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindCategory:
		return v.Code == o.Code
	}
	return true
}
