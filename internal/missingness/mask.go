package missingness

import (
	"math"

	"designspace/domain/condition"
)

// FlagThreshold is the decision point for reconstructed indicator values.
const FlagThreshold = 0.5

// Link ties a numeric field to its derived "is NA" indicator feature.
type Link struct {
	Field string `json:"field"`
	Flag  string `json:"flag"`
}

// FlagName is the feature name of the indicator derived for field.
func FlagName(field string) string {
	return field + " is NA"
}

// NewLink builds the link for a flagged field
func NewLink(field string) Link {
	return Link{Field: field, Flag: FlagName(field)}
}

// IsFlagged reports whether a (possibly noisy) indicator value means N/A.
func IsFlagged(v float64) bool {
	return !math.IsNaN(v) && v >= FlagThreshold
}

// Indicator encodes a raw cell as 1 when it is structurally inapplicable.
// Missing (data-entry gap) cells are not inapplicable.
func Indicator(v condition.Value) float64 {
	if v.IsNA() {
		return 1
	}
	return 0
}
