package repair

import (
	"testing"

	"designspace/domain/condition"
	"designspace/domain/schema"

	"github.com/stretchr/testify/assert"
)

// reconstructedBlend mimics a decoded point halfway between a single-task and
// a dual-task centroid: flags fell just under threshold so the decoder left a
// bare difficulty value.
func reconstructedBlend() (condition.Row, map[string]float64) {
	row := condition.NewRow("Single-Task -> Dual-Task/PRP @ 0.50")
	row.Set("Task 2 Response Probability", condition.Number(0.4))
	row.Set("Trial Transition Type", condition.Category("Pure"))
	row.Set("Response Set Overlap", condition.NotApplicable())
	row.Set("Task 2 Stimulus-Response Mapping", condition.NotApplicable())
	row.Set("Task 2 Cue Type", condition.NotApplicable())
	row.Set("Task 2 Difficulty", condition.Number(2.9))
	row.Set("Task 2 CSI", condition.Number(12))
	row.Set("Inter-task SOA", condition.Number(240))
	row.Set("RSI is Predictable", condition.Number(0.8))
	row.Set("Stimulus-Stimulus Congruency", condition.Number(-0.7))

	features := map[string]float64{
		"Task 2 Difficulty is NA": 0.45,
		"Task 2 CSI is NA":        0.45,
	}
	return row, features
}

func TestRepair_ForcesSecondTaskFields(t *testing.T) {
	r := NewRepairer(schema.MustDefault())
	row, features := reconstructedBlend()

	out, outcome := r.Repair(row, features)

	assert.True(t, outcome.SingleTask)
	assert.Equal(t, 7, outcome.Available)
	assert.Equal(t, 5, outcome.Votes)
	assert.Equal(t, 3, outcome.Forced)

	assert.True(t, out.Get("Task 2 Difficulty").IsNA(), "difficulty must not stay a bare float")
	assert.True(t, out.Get("Task 2 CSI").IsNA())
	assert.True(t, out.Get("Inter-task SOA").IsNA())
	assert.True(t, out.Get("Task 2 Cue Type").IsNA())

	// the input is untouched
	assert.Equal(t, 2.9, row.Get("Task 2 Difficulty").Float())
}

func TestRepair_NoMajorityLeavesFields(t *testing.T) {
	r := NewRepairer(schema.MustDefault())
	row := condition.NewRow("dual")
	row.Set("Task 2 Response Probability", condition.Number(1))
	row.Set("Trial Transition Type", condition.Category("Pure"))
	row.Set("Response Set Overlap", condition.Category("Disjoint"))
	row.Set("Task 2 Stimulus-Response Mapping", condition.Category("Compatible"))
	row.Set("Task 2 Cue Type", condition.Category("None/Implicit"))
	row.Set("Task 2 Difficulty", condition.Number(2))

	out, outcome := r.Repair(row, map[string]float64{"Task 2 Difficulty is NA": 0, "Task 2 CSI is NA": 0})

	assert.False(t, outcome.SingleTask)
	assert.Equal(t, 1, outcome.Votes)
	assert.Equal(t, 2.0, out.Get("Task 2 Difficulty").Float())
}

func TestRepair_TieDoesNotFire(t *testing.T) {
	r := NewRepairer(schema.MustDefault())
	row := condition.NewRow("tie")
	row.Set("Trial Transition Type", condition.Category("Pure"))
	row.Set("Response Set Overlap", condition.Category("Identical"))

	_, outcome := r.Repair(row, nil)
	assert.Equal(t, 2, outcome.Available)
	assert.Equal(t, 1, outcome.Votes)
	assert.False(t, outcome.SingleTask)
}

func TestRepair_NoSignalsAvailable(t *testing.T) {
	_, outcome := NewRepairer(schema.MustDefault()).Repair(condition.NewRow("empty"), nil)
	assert.Equal(t, 0, outcome.Available)
	assert.False(t, outcome.SingleTask)
}

func TestRepair_RelabelsAndSnaps(t *testing.T) {
	r := NewRepairer(schema.MustDefault())
	row, features := reconstructedBlend()

	out, _ := r.Repair(row, features)
	assert.Equal(t, "Yes", out.Get("RSI is Predictable").Code)
	assert.Equal(t, "Incongruent", out.Get("Stimulus-Stimulus Congruency").Code)

	row.Set("RSI is Predictable", condition.Category("0"))
	row.Set("Stimulus-Stimulus Congruency", condition.Category("Neutral"))
	out, _ = r.Repair(row, features)
	assert.Equal(t, "No", out.Get("RSI is Predictable").Code)
	assert.Equal(t, "Neutral", out.Get("Stimulus-Stimulus Congruency").Code)
}
