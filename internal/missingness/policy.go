// Package missingness decides how inapplicable and missing numeric values are
// flagged, imputed for decomposition, and restored as N/A on the way out.
package missingness

import (
	"fmt"
	"math"

	"designspace/domain/paradigm"

	"github.com/montanaflynn/stats"
)

// Strategy names a placeholder rule.
type Strategy string

const (
	// Sentinel substitutes a fixed out-of-range value, e.g. -1 on a 0-1 scale.
	Sentinel Strategy = "sentinel"
	// Constant substitutes a fixed neutral value inside the range.
	Constant Strategy = "constant"
	Mean     Strategy = "mean"
	Median   Strategy = "median"
	// ParadigmConditional uses the sentinel only for conditions without a
	// second task and the fallback strategy otherwise.
	ParadigmConditional Strategy = "paradigm"
)

// Policy is the declared placeholder rule for one numeric column.
type Policy struct {
	Strategy      Strategy `yaml:"strategy" json:"strategy"`
	Value         float64  `yaml:"value" json:"value"`
	Fallback      Strategy `yaml:"fallback,omitempty" json:"fallback,omitempty"`
	FallbackValue float64  `yaml:"fallback_value,omitempty" json:"fallback_value,omitempty"`
}

// Validate checks the strategy names
func (p Policy) Validate() error {
	switch p.Strategy {
	case Sentinel, Constant, Mean, Median:
		return nil
	case ParadigmConditional:
		switch p.Fallback {
		case Constant, Mean, Median:
			return nil
		}
		return fmt.Errorf("paradigm placeholder needs a constant, mean or median fallback, got %q", p.Fallback)
	case "":
		return fmt.Errorf("placeholder strategy is required")
	}
	return fmt.Errorf("unknown placeholder strategy %q", p.Strategy)
}

// Placeholder is a fitted policy: every data-dependent value is resolved.
type Placeholder struct {
	Strategy Strategy `json:"strategy"`
	Primary  float64  `json:"primary"`
	Fallback float64  `json:"fallback"`
}

// Fit resolves mean/median strategies against the observed (defined) values.
// An empty observation set resolves statistics to 0.
func (p Policy) Fit(observed []float64) (Placeholder, error) {
	if err := p.Validate(); err != nil {
		return Placeholder{}, err
	}

	primary, err := resolve(p.Strategy, p.Value, observed)
	if err != nil {
		return Placeholder{}, err
	}
	ph := Placeholder{Strategy: p.Strategy, Primary: primary, Fallback: primary}

	if p.Strategy == ParadigmConditional {
		ph.Primary = p.Value
		ph.Fallback, err = resolve(p.Fallback, p.FallbackValue, observed)
		if err != nil {
			return Placeholder{}, err
		}
	}
	return ph, nil
}

func resolve(s Strategy, value float64, observed []float64) (float64, error) {
	switch s {
	case Sentinel, Constant, ParadigmConditional:
		return value, nil
	case Mean, Median:
		if len(observed) == 0 {
			return 0, nil
		}
		var v float64
		var err error
		if s == Mean {
			v, err = stats.Mean(observed)
		} else {
			v, err = stats.Median(observed)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to compute %s placeholder: %w", s, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("unknown placeholder strategy %q", s)
}

// Value returns the substitute for an undefined cell of a condition labelled p.
// An unlabelled condition takes the fallback.
func (ph Placeholder) Value(p paradigm.Paradigm) float64 {
	if ph.Strategy != ParadigmConditional {
		return ph.Primary
	}
	if p == "" || p.HasSecondTask() {
		return ph.Fallback
	}
	return ph.Primary
}

// Defined filters NaN out of a column.
func Defined(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
