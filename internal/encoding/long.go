package encoding

import (
	"math"
	"sort"

	"designspace/domain/core"
	"designspace/domain/schema"

	"gonum.org/v1/gonum/mat"
)

// UnmappedView holds features whose source column belongs to no view.
const UnmappedView = "Unmapped"

// LongRecord is one cell of a matrix in the (sample, feature, value, view,
// group) format consumed by multi-view factor models.
type LongRecord struct {
	Sample  string  `json:"sample"`
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
	View    string  `json:"view"`
	Group   string  `json:"group"`
}

// ToLong melts an encoded matrix. Each sample carries its own group, usually
// its paradigm label. NaN cells are dropped. Records are ordered by sample,
// then by layout.
func ToLong(fs *FittedState, s *schema.Schema, m mat.Matrix, samples, groups []string) ([]LongRecord, error) {
	if err := fs.fitted(); err != nil {
		return nil, err
	}
	r, c := m.Dims()
	if c != fs.width {
		return nil, core.NewShapeError("encoded matrix", r, fs.width, r, c)
	}
	if len(samples) != r {
		return nil, core.NewShapeError("sample ids", r, 1, len(samples), 1)
	}
	if len(groups) != r {
		return nil, core.NewShapeError("sample groups", r, 1, len(groups), 1)
	}

	views := make([]string, c)
	for j, src := range fs.sources {
		views[j] = s.ViewOf(src)
		if views[j] == "" {
			views[j] = UnmappedView
		}
	}

	var out []LongRecord
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			out = append(out, LongRecord{
				Sample:  samples[i],
				Feature: fs.names[j],
				Value:   v,
				View:    views[j],
				Group:   groups[i],
			})
		}
	}
	return out, nil
}

// Likelihoods assigns a likelihood to every view present in records, in
// alphabetical view order. All views are treated as gaussian.
func Likelihoods(records []LongRecord) ([]string, []string) {
	seen := make(map[string]bool)
	for _, rec := range records {
		seen[rec.View] = true
	}
	views := make([]string, 0, len(seen))
	for v := range seen {
		views = append(views, v)
	}
	sort.Strings(views)

	likelihoods := make([]string, len(views))
	for i := range likelihoods {
		likelihoods[i] = "gaussian"
	}
	return views, likelihoods
}
