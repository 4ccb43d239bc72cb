package latent

import (
	"fmt"

	"designspace/domain/condition"
	"designspace/domain/core"
	"designspace/domain/run"
	"designspace/domain/schema"
	"designspace/internal/encoding"

	"gonum.org/v1/gonum/mat"
)

// Inverter maps latent rows back to the encoded feature space. Both
// decomposition.PCA and decomposition.WeightsReconstructor satisfy it.
type Inverter interface {
	InverseTransform(z mat.Matrix) (*mat.Dense, error)
}

// Engine reconstructs latent points. It holds its collaborators read-only
// and is safe for concurrent use when they are.
type Engine struct {
	schema  *schema.Schema
	fitted  *encoding.FittedState
	inverse Inverter
}

// NewEngine creates an engine
func NewEngine(s *schema.Schema, fitted *encoding.FittedState, inverse Inverter) *Engine {
	return &Engine{schema: s, fitted: fitted, inverse: inverse}
}

// Reconstruct decodes one latent point and rescales normalized numerics to
// their human range. Flagged fields come back as N/A from the decoder.
func (e *Engine) Reconstruct(label string, latent []float64) (run.Reconstruction, error) {
	x, err := e.inverse.InverseTransform(mat.NewDense(1, len(latent), append([]float64(nil), latent...)))
	if err != nil {
		return run.Reconstruction{}, fmt.Errorf("inverse transform: %w", err)
	}
	if _, c := x.Dims(); c != e.fitted.Width() {
		return run.Reconstruction{}, core.NewShapeError("reconstructed vector", 1, e.fitted.Width(), 1, c)
	}

	vec := x.RawRowView(0)
	features, err := e.fitted.Features(vec)
	if err != nil {
		return run.Reconstruction{}, err
	}
	row, err := e.fitted.DecodeRow(vec)
	if err != nil {
		return run.Reconstruction{}, err
	}
	row.ID = label
	e.rescale(row)

	return run.Reconstruction{Label: label, Row: row, Features: features}, nil
}

// ReconstructInterpolation reconstructs a synthetic point and records its
// parents.
func (e *Engine) ReconstructInterpolation(ip Interpolation) (run.Reconstruction, error) {
	label := fmt.Sprintf("%s -> %s @ %.2f", ip.From, ip.To, ip.Alpha)
	rec, err := e.Reconstruct(label, ip.Latent)
	if err != nil {
		return rec, err
	}
	rec.From, rec.To, rec.Alpha = ip.From, ip.To, ip.Alpha
	return rec, nil
}

func (e *Engine) rescale(row condition.Row) {
	for _, col := range e.schema.Numeric {
		if col.Range == nil {
			continue
		}
		if v := row.Get(col.Name); v.IsNumber() {
			row.Set(col.Name, condition.Number(col.Range.Denormalize(v.Num)))
		}
	}
}
