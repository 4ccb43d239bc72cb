// Package decomposition provides reference dimensionality reductions for the
// latent engine.
package decomposition

import (
	"fmt"

	"designspace/domain/core"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA is principal component analysis over the columns of an encoded matrix.
// Components == 0 keeps every component, which makes InverseTransform exact
// for the training rows.
type PCA struct {
	Components int

	mean     []float64
	vectors  *mat.Dense // d×k
	vars     []float64  // all component variances, descending
	features []string
}

// NewPCA creates an unfitted PCA
func NewPCA(components int) *PCA {
	return &PCA{Components: components}
}

// SetFeatureNames labels the input columns for Loadings and Weights.
func (p *PCA) SetFeatureNames(names []string) {
	p.features = append([]string(nil), names...)
}

// Fit learns the column means and principal axes
func (p *PCA) Fit(x mat.Matrix) error {
	n, d := x.Dims()
	if n == 0 || d == 0 {
		return core.ErrEmptyDataset
	}
	if p.Components < 0 {
		return fmt.Errorf("pca: negative component count %d", p.Components)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return fmt.Errorf("pca: decomposition of %dx%d matrix failed", n, d)
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	p.vars = pc.VarsTo(nil)

	_, available := vecs.Dims()
	k := p.Components
	if k == 0 || k > available {
		k = available
	}
	p.vectors = mat.DenseCopyOf(vecs.Slice(0, d, 0, k))

	p.mean = make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		p.mean[j] = stat.Mean(col, nil)
	}
	return nil
}

// FitTransform fits and projects x
func (p *PCA) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := p.Fit(x); err != nil {
		return nil, err
	}
	return p.Transform(x)
}

// Transform projects centered rows onto the kept axes
func (p *PCA) Transform(x mat.Matrix) (*mat.Dense, error) {
	if p.vectors == nil {
		return nil, core.ErrNotFitted
	}
	n, d := x.Dims()
	if d != len(p.mean) {
		return nil, core.NewShapeError("pca input", n, len(p.mean), n, d)
	}

	centered := mat.DenseCopyOf(x)
	for i := 0; i < n; i++ {
		row := centered.RawRowView(i)
		for j := range row {
			row[j] -= p.mean[j]
		}
	}
	var z mat.Dense
	z.Mul(centered, p.vectors)
	return &z, nil
}

// InverseTransform maps latent rows back to the input space
func (p *PCA) InverseTransform(z mat.Matrix) (*mat.Dense, error) {
	if p.vectors == nil {
		return nil, core.ErrNotFitted
	}
	n, k := z.Dims()
	if _, kk := p.vectors.Dims(); k != kk {
		return nil, core.NewShapeError("latent", n, kk, n, k)
	}

	var x mat.Dense
	x.Mul(z, p.vectors.T())
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		for j := range row {
			row[j] += p.mean[j]
		}
	}
	return &x, nil
}

// ExplainedVarianceRatio returns the share of total variance carried by each
// kept component.
func (p *PCA) ExplainedVarianceRatio() ([]float64, error) {
	if p.vectors == nil {
		return nil, core.ErrNotFitted
	}
	var total float64
	for _, v := range p.vars {
		total += v
	}
	_, k := p.vectors.Dims()
	out := make([]float64, k)
	if total == 0 {
		return out, nil
	}
	for i := range out {
		out[i] = p.vars[i] / total
	}
	return out, nil
}

// Loadings returns the weight of every feature on every kept component.
func (p *PCA) Loadings() (map[string][]float64, error) {
	if p.vectors == nil {
		return nil, core.ErrNotFitted
	}
	d, k := p.vectors.Dims()
	if len(p.features) != d {
		return nil, core.NewShapeError("feature names", d, 1, len(p.features), 1)
	}
	out := make(map[string][]float64, d)
	for i, name := range p.features {
		row := make([]float64, k)
		mat.Row(row, i, p.vectors)
		out[name] = row
	}
	return out, nil
}

// Means returns the fitted column means, aligned with the rows of Weights.
func (p *PCA) Means() []float64 {
	return append([]float64(nil), p.mean...)
}

// Weights exposes the kept axes as a factor model.
func (p *PCA) Weights() (*mat.Dense, []string) {
	if p.vectors == nil {
		return nil, nil
	}
	return mat.DenseCopyOf(p.vectors), append([]string(nil), p.features...)
}
