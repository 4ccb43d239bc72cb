package run

import (
	"designspace/domain/condition"
	"designspace/domain/paradigm"
)

// PointType distinguishes plotted points
type PointType string

const (
	Empirical    PointType = "Empirical"
	Centroid     PointType = "Centroid"
	Interpolated PointType = "Interpolated"
)

// PlotPoint is one point in latent space, as read by plotting consumers.
// From, To and Alpha are set for interpolated points only.
type PlotPoint struct {
	Label    string            `json:"label"`
	Coords   []float64         `json:"coords"`
	Paradigm paradigm.Paradigm `json:"paradigm,omitempty"`
	Type     PointType         `json:"type"`
	From     paradigm.Paradigm `json:"from,omitempty"`
	To       paradigm.Paradigm `json:"to,omitempty"`
	Alpha    float64           `json:"alpha,omitempty"`
}

// Reconstruction is a latent point brought back to a readable condition.
// Features holds the encoded vector before decoding, keyed by feature name.
type Reconstruction struct {
	Label    string             `json:"label"`
	From     paradigm.Paradigm  `json:"from,omitempty"`
	To       paradigm.Paradigm  `json:"to,omitempty"`
	Alpha    float64            `json:"alpha"`
	Row      condition.Row      `json:"row"`
	Features map[string]float64 `json:"features"`
	Repaired bool               `json:"repaired"`
}

// SkippedPair reports an interpolation that could not be produced
type SkippedPair struct {
	From   paradigm.Paradigm `json:"from"`
	To     paradigm.Paradigm `json:"to"`
	Reason string            `json:"reason"`
}

// Record is a complete stored run
type Record struct {
	Manifest        Manifest         `json:"manifest"`
	Points          []PlotPoint      `json:"points"`
	Reconstructions []Reconstruction `json:"reconstructions"`
	Skipped         []SkippedPair    `json:"skipped,omitempty"`
}
