package ports

import "gonum.org/v1/gonum/mat"

// Decomposer is a dimensionality reduction fitted on an encoded matrix.
// Implementations are black boxes to the latent engine; only the shapes
// matter: FitTransform and Transform map n×d to n×k, InverseTransform maps
// n×k back to n×d.
type Decomposer interface {
	FitTransform(x mat.Matrix) (*mat.Dense, error)
	Transform(x mat.Matrix) (*mat.Dense, error)
	InverseTransform(z mat.Matrix) (*mat.Dense, error)
}

// FactorModel exposes factor-analysis style weights: one row per feature,
// one column per factor, with the row names. Feature order need not match the
// encoder's layout.
type FactorModel interface {
	Weights() (*mat.Dense, []string)
}

// CenteredModel is a FactorModel fitted on mean-centered data. Means is
// aligned with the rows of Weights.
type CenteredModel interface {
	FactorModel
	Means() []float64
}
