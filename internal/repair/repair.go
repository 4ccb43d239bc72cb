// Package repair restores domain consistency to synthetic conditions produced
// by latent interpolation. It is never applied to empirical rows.
package repair

import (
	"math"
	"strconv"

	"designspace/domain/condition"
	"designspace/domain/schema"
)

// Outcome reports how the single-task vote went
type Outcome struct {
	Votes      int  `json:"votes"`
	Available  int  `json:"available"`
	SingleTask bool `json:"single_task"`
	Forced     int  `json:"forced"`
}

// Repairer applies a schema's repair rules
type Repairer struct {
	schema *schema.Schema
}

// NewRepairer creates a repairer
func NewRepairer(s *schema.Schema) *Repairer {
	return &Repairer{schema: s}
}

// Repair returns a repaired copy of row. features is the named encoded
// vector the row was decoded from; flag signals read it directly.
func (r *Repairer) Repair(row condition.Row, features map[string]float64) (condition.Row, Outcome) {
	out := row.Clone()
	outcome := r.vote(row, features)

	if outcome.SingleTask {
		for _, f := range r.schema.Repair.SecondTaskFields {
			if !out.Get(f).IsNA() {
				outcome.Forced++
			}
			out.Set(f, condition.NotApplicable())
		}
	}

	for _, col := range r.schema.YesNo {
		out.Set(col.Name, yesNo(out.Get(col.Name)))
	}
	for _, col := range r.schema.Categorical {
		out.Set(col.Name, snap(out.Get(col.Name), col))
	}
	return out, outcome
}

// vote counts single-task signals. Signals whose input is unavailable do not
// count toward the total; the vote fires on a strict majority.
func (r *Repairer) vote(row condition.Row, features map[string]float64) Outcome {
	var o Outcome
	for _, sig := range r.schema.Repair.Signals {
		yes, ok := evaluate(sig, row, features)
		if !ok {
			continue
		}
		o.Available++
		if yes {
			o.Votes++
		}
	}
	o.SingleTask = o.Available > 0 && 2*o.Votes > o.Available
	return o
}

func evaluate(sig schema.Signal, row condition.Row, features map[string]float64) (vote, available bool) {
	switch {
	case sig.Above != nil:
		x, ok := features[sig.Column]
		if !ok || math.IsNaN(x) {
			return false, false
		}
		return x > *sig.Above, true
	case sig.Below != nil:
		v := row.Get(sig.Column)
		if !v.IsNumber() {
			return false, false
		}
		return v.Num < *sig.Below, true
	default:
		v := row.Get(sig.Column)
		if v.IsMissing() {
			return false, false
		}
		code, _ := v.CategoryCode()
		return code == sig.Equals, true
	}
}

// yesNo rounds a 0/1 value and relabels it.
func yesNo(v condition.Value) condition.Value {
	x, ok := numeric(v)
	if !ok {
		return v
	}
	if math.Round(x) >= 1 {
		return condition.Category("Yes")
	}
	return condition.Category("No")
}

// snap moves a numeric value of an ordinal column to the nearest declared
// code. Codes already in the vocabulary are kept.
func snap(v condition.Value, col schema.CategoricalColumn) condition.Value {
	if len(col.Ordinal) == 0 {
		return v
	}
	if v.Kind == condition.KindCategory {
		if _, known := col.Ordinal[v.Code]; known {
			return v
		}
	}
	x, ok := numeric(v)
	if !ok {
		return v
	}
	code, ok := col.NearestOrdinal(x)
	if !ok {
		return v
	}
	return condition.Category(code)
}

func numeric(v condition.Value) (float64, bool) {
	switch v.Kind {
	case condition.KindNumber:
		return v.Num, true
	case condition.KindCategory:
		f, err := strconv.ParseFloat(v.Code, 64)
		return f, err == nil
	}
	return 0, false
}
