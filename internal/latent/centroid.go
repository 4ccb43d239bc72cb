// Package latent reasons in the reduced space: paradigm centroids, linear
// interpolation between them and reconstruction of latent points into
// readable conditions.
package latent

import (
	"fmt"
	"math"

	"designspace/domain/core"
	"designspace/domain/paradigm"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Centroids returns the mean latent vector of every paradigm present in
// labels. Paradigms without members are absent from the map.
func Centroids(points mat.Matrix, labels []paradigm.Paradigm) (map[paradigm.Paradigm][]float64, error) {
	n, k := points.Dims()
	if n == 0 {
		return nil, core.ErrEmptyDataset
	}
	if len(labels) != n {
		return nil, core.NewShapeError("labels", n, 1, len(labels), 1)
	}

	members := make(map[paradigm.Paradigm][]int)
	for i, p := range labels {
		members[p] = append(members[p], i)
	}

	out := make(map[paradigm.Paradigm][]float64, len(members))
	col := make([]float64, 0, n)
	for p, idx := range members {
		c := make([]float64, k)
		for j := 0; j < k; j++ {
			col = col[:0]
			for _, i := range idx {
				col = append(col, points.At(i, j))
			}
			c[j] = stat.Mean(col, nil)
		}
		out[p] = c
	}
	return out, nil
}

// Centroid looks up one paradigm, reporting an absent paradigm explicitly.
func Centroid(centroids map[paradigm.Paradigm][]float64, p paradigm.Paradigm) ([]float64, error) {
	c, ok := centroids[p]
	if !ok {
		return nil, core.NewCentroidMissingError(string(p))
	}
	return c, nil
}

// Interpolate returns a + alpha*(b-a). alpha must lie in [0,1].
func Interpolate(a, b []float64, alpha float64) ([]float64, error) {
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidAlpha, alpha)
	}
	if len(a) != len(b) {
		return nil, core.NewShapeError("interpolation endpoints", 1, len(a), 1, len(b))
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + alpha*(b[i]-a[i])
	}
	return out, nil
}
