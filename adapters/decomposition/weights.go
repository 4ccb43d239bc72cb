package decomposition

import (
	"designspace/domain/core"
	"designspace/ports"

	"gonum.org/v1/gonum/mat"
)

// WeightsReconstructor inverts a factor model as latent · Wᵀ, with the
// weight rows realigned by name to an encoder's feature layout. Every layout
// feature must have weights. Models fitted on centered data get their means
// added back.
type WeightsReconstructor struct {
	model    ports.FactorModel
	features []string
}

// NewWeightsReconstructor binds a factor model to a feature layout
func NewWeightsReconstructor(model ports.FactorModel, features []string) *WeightsReconstructor {
	return &WeightsReconstructor{model: model, features: append([]string(nil), features...)}
}

// aligned returns W and the column means (nil for uncentered models) with
// rows in layout order.
func (r *WeightsReconstructor) aligned() (*mat.Dense, []float64, error) {
	w, names := r.model.Weights()
	if w == nil {
		return nil, nil, core.ErrNotFitted
	}
	rows, k := w.Dims()
	if len(names) != rows {
		return nil, nil, core.NewShapeError("factor weights", len(names), k, rows, k)
	}

	var means []float64
	if cm, ok := r.model.(ports.CenteredModel); ok {
		means = cm.Means()
		if len(means) != rows {
			return nil, nil, core.NewShapeError("factor means", rows, 1, len(means), 1)
		}
	}

	position := make(map[string]int, len(r.features))
	for i, f := range r.features {
		position[f] = i
	}
	out := mat.NewDense(len(r.features), k, nil)
	assigned := make([]bool, len(r.features))
	var center []float64
	if means != nil {
		center = make([]float64, len(r.features))
	}
	for i, name := range names {
		j, ok := position[name]
		if !ok {
			return nil, nil, core.NewMissingFeatureError(name)
		}
		out.SetRow(j, w.RawRowView(i))
		assigned[j] = true
		if center != nil {
			center[j] = means[i]
		}
	}
	for j, ok := range assigned {
		if !ok {
			return nil, nil, core.NewMissingFeatureError(r.features[j])
		}
	}
	return out, center, nil
}

// InverseTransform maps latent rows back to the encoded feature space
func (r *WeightsReconstructor) InverseTransform(z mat.Matrix) (*mat.Dense, error) {
	w, center, err := r.aligned()
	if err != nil {
		return nil, err
	}
	n, k := z.Dims()
	if _, kk := w.Dims(); k != kk {
		return nil, core.NewShapeError("latent", n, kk, n, k)
	}
	var x mat.Dense
	x.Mul(z, w.T())
	if center != nil {
		for i := 0; i < n; i++ {
			row := x.RawRowView(i)
			for j := range row {
				row[j] += center[j]
			}
		}
	}
	return &x, nil
}
