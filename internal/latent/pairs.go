package latent

import (
	"designspace/domain/paradigm"
	"designspace/domain/run"
)

// Pair is an ordered pair of paradigms to interpolate between
type Pair struct {
	From paradigm.Paradigm `json:"from" yaml:"from"`
	To   paradigm.Paradigm `json:"to" yaml:"to"`
}

// DefaultPairs interpolates from single-task conditions toward each paradigm
// with a second task, and between the two second-task paradigms.
func DefaultPairs() []Pair {
	return []Pair{
		{From: paradigm.SingleTask, To: paradigm.DualTask},
		{From: paradigm.SingleTask, To: paradigm.TaskSwitching},
		{From: paradigm.DualTask, To: paradigm.TaskSwitching},
		{From: paradigm.Interference, To: paradigm.TaskSwitching},
	}
}

// Interpolation is one synthetic latent point
type Interpolation struct {
	From   paradigm.Paradigm
	To     paradigm.Paradigm
	Alpha  float64
	Latent []float64
}

// InterpolatePairs produces every pair × alpha point it can. Pairs or alphas
// that cannot be produced are reported rather than aborting the batch.
func InterpolatePairs(centroids map[paradigm.Paradigm][]float64, pairs []Pair, alphas []float64) ([]Interpolation, []run.SkippedPair) {
	var out []Interpolation
	var skipped []run.SkippedPair

	for _, pr := range pairs {
		a, err := Centroid(centroids, pr.From)
		if err != nil {
			skipped = append(skipped, run.SkippedPair{From: pr.From, To: pr.To, Reason: err.Error()})
			continue
		}
		b, err := Centroid(centroids, pr.To)
		if err != nil {
			skipped = append(skipped, run.SkippedPair{From: pr.From, To: pr.To, Reason: err.Error()})
			continue
		}
		for _, alpha := range alphas {
			z, err := Interpolate(a, b, alpha)
			if err != nil {
				skipped = append(skipped, run.SkippedPair{From: pr.From, To: pr.To, Reason: err.Error()})
				continue
			}
			out = append(out, Interpolation{From: pr.From, To: pr.To, Alpha: alpha, Latent: z})
		}
	}
	return out, skipped
}
