package latent

import (
	"designspace/domain/core"
	"designspace/domain/paradigm"
	"designspace/domain/run"

	"gonum.org/v1/gonum/mat"
)

// EmpiricalPoints labels the projected training rows
func EmpiricalPoints(z mat.Matrix, ids []string, labels []paradigm.Paradigm) ([]run.PlotPoint, error) {
	n, k := z.Dims()
	if len(ids) != n || len(labels) != n {
		return nil, core.NewShapeError("point labels", n, 1, len(labels), 1)
	}
	out := make([]run.PlotPoint, n)
	for i := 0; i < n; i++ {
		coords := make([]float64, k)
		mat.Row(coords, i, z)
		out[i] = run.PlotPoint{Label: ids[i], Coords: coords, Paradigm: labels[i], Type: run.Empirical}
	}
	return out, nil
}

// CentroidPoints lists centroids in the fixed paradigm order
func CentroidPoints(centroids map[paradigm.Paradigm][]float64) []run.PlotPoint {
	var out []run.PlotPoint
	for _, p := range paradigm.All {
		c, ok := centroids[p]
		if !ok {
			continue
		}
		out = append(out, run.PlotPoint{
			Label:    string(p) + " centroid",
			Coords:   append([]float64(nil), c...),
			Paradigm: p,
			Type:     run.Centroid,
		})
	}
	return out
}

// InterpolatedPoints converts synthetic points for plotting
func InterpolatedPoints(ips []Interpolation) []run.PlotPoint {
	out := make([]run.PlotPoint, len(ips))
	for i, ip := range ips {
		out[i] = run.PlotPoint{
			Label:  string(ip.From) + " -> " + string(ip.To),
			Coords: append([]float64(nil), ip.Latent...),
			Type:   run.Interpolated,
			From:   ip.From,
			To:     ip.To,
			Alpha:  ip.Alpha,
		}
	}
	return out
}
