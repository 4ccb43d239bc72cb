package latent

import (
	"maps"
	"math"
	"strings"
	"testing"

	"designspace/adapters/decomposition"
	"designspace/domain/condition"
	"designspace/domain/core"
	"designspace/domain/paradigm"
	"designspace/domain/run"
	"designspace/domain/schema"
	"designspace/internal/cleaning"
	"designspace/internal/encoding"
	"designspace/internal/repair"
	"designspace/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type pipeline struct {
	schema    *schema.Schema
	rows      []condition.Row
	labels    []paradigm.Paradigm
	fitted    *encoding.FittedState
	z         *mat.Dense
	centroids map[paradigm.Paradigm][]float64
	engine    *Engine
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	return newPipelineFrom(t, testkit.NewDesignSpaceGenerator(testkit.GeneratorConfig{ConditionsPerParadigm: 6, Seed: 11}).Generate())
}

func newPipelineFrom(t *testing.T, table condition.RawTable) *pipeline {
	t.Helper()
	s := schema.MustDefault()
	rows := cleaning.NewRowCleaner(s).CleanTable(table)
	labels := paradigm.NewClassifier(s.Paradigm).ClassifyAll(rows)

	fitted, err := encoding.NewEncoder(s, encoding.DefaultOptions()).Fit(rows, labels)
	require.NoError(t, err)
	x, err := fitted.Encode(rows, labels)
	require.NoError(t, err)

	pca := decomposition.NewPCA(0)
	z, err := pca.FitTransform(x)
	require.NoError(t, err)

	centroids, err := Centroids(z, labels)
	require.NoError(t, err)

	return &pipeline{
		schema:    s,
		rows:      rows,
		labels:    labels,
		fitted:    fitted,
		z:         z,
		centroids: centroids,
		engine:    NewEngine(s, fitted, pca),
	}
}

func TestCentroids(t *testing.T) {
	z := mat.NewDense(4, 2, []float64{
		0, 0,
		2, 2,
		10, 0,
		10, 4,
	})
	labels := []paradigm.Paradigm{paradigm.SingleTask, paradigm.SingleTask, paradigm.DualTask, paradigm.DualTask}

	c, err := Centroids(z, labels)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, c[paradigm.SingleTask])
	assert.Equal(t, []float64{10, 2}, c[paradigm.DualTask])

	_, err = Centroid(c, paradigm.Interference)
	assert.ErrorIs(t, err, core.ErrCentroidMissing)

	_, err = Centroids(z, labels[:3])
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestInterpolateEndpoints(t *testing.T) {
	a := []float64{1, -2, 3}
	b := []float64{5, 2, -1}

	at0, err := Interpolate(a, b, 0)
	require.NoError(t, err)
	assert.Equal(t, a, at0)

	at1, err := Interpolate(a, b, 1)
	require.NoError(t, err)
	assert.Equal(t, b, at1)

	mid, _ := Interpolate(a, b, 0.5)
	assert.Equal(t, []float64{3, 0, 1}, mid)
}

func TestInterpolateRejectsAlpha(t *testing.T) {
	for _, alpha := range []float64{-0.1, 1.5} {
		_, err := Interpolate([]float64{0}, []float64{1}, alpha)
		assert.ErrorIs(t, err, core.ErrInvalidAlpha)
	}
	_, err := Interpolate([]float64{0}, []float64{1, 2}, 0.5)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}

func TestInterpolatePairsReportsSkips(t *testing.T) {
	centroids := map[paradigm.Paradigm][]float64{
		paradigm.SingleTask: {0, 0},
		paradigm.DualTask:   {1, 1},
	}
	pairs := []Pair{
		{From: paradigm.SingleTask, To: paradigm.DualTask},
		{From: paradigm.SingleTask, To: paradigm.TaskSwitching},
	}

	ips, skipped := InterpolatePairs(centroids, pairs, []float64{0.25, 2})
	require.Len(t, ips, 1)
	assert.Equal(t, []float64{0.25, 0.25}, ips[0].Latent)

	require.Len(t, skipped, 2)
	assert.Equal(t, paradigm.SingleTask, skipped[0].From)
	assert.Contains(t, skipped[0].Reason, "interpolation factor")
	assert.Equal(t, paradigm.TaskSwitching, skipped[1].To)
	assert.Contains(t, skipped[1].Reason, "Task-Switching")
}

func TestReconstructCentroidEndpoint(t *testing.T) {
	p := newPipeline(t)

	a, err := Centroid(p.centroids, paradigm.SingleTask)
	require.NoError(t, err)
	b, err := Centroid(p.centroids, paradigm.DualTask)
	require.NoError(t, err)

	at0, err := Interpolate(a, b, 0)
	require.NoError(t, err)
	fromInterp, err := p.engine.Reconstruct("alpha0", at0)
	require.NoError(t, err)
	fromCentroid, err := p.engine.Reconstruct("centroid", a)
	require.NoError(t, err)

	for name, v := range fromCentroid.Features {
		assert.InDelta(t, v, fromInterp.Features[name], 1e-9, name)
	}
	// single-task centroid has every second-task flag set
	assert.True(t, fromCentroid.Row.Get("Task 2 Difficulty").IsNA())
	assert.True(t, fromCentroid.Row.Get("Inter-task SOA").IsNA())
}

func TestReconstructRescalesDifficulty(t *testing.T) {
	p := newPipeline(t)

	// the first empirical row reconstructs to itself
	first := make([]float64, p.z.RawMatrix().Cols)
	mat.Row(first, 0, p.z)
	rec, err := p.engine.Reconstruct(p.rows[0].ID, first)
	require.NoError(t, err)

	normalized := p.rows[0].Get("Task 1 Difficulty").Float()
	assert.InDelta(t, normalized*4+1, rec.Row.Get("Task 1 Difficulty").Float(), 1e-8)
	assert.Equal(t, p.rows[0].ID, rec.Row.ID)
}

func TestInterpolationRepairForcesSecondTaskNA(t *testing.T) {
	p := newPipeline(t)
	ips, skipped := InterpolatePairs(p.centroids, []Pair{{From: paradigm.SingleTask, To: paradigm.DualTask}}, []float64{0.25})
	require.Empty(t, skipped)
	require.Len(t, ips, 1)

	rec, err := p.engine.ReconstructInterpolation(ips[0])
	require.NoError(t, err)
	assert.Equal(t, paradigm.SingleTask, rec.From)
	assert.Equal(t, 0.25, rec.Alpha)

	repaired, outcome := repair.NewRepairer(p.schema).Repair(rec.Row, rec.Features)
	assert.True(t, outcome.SingleTask)
	for _, f := range p.schema.Repair.SecondTaskFields {
		assert.True(t, repaired.Get(f).IsNA(), f)
	}
}

// blendTable holds one single-task condition and four dual-task conditions
// that spread their second-task categories, so the halfway point keeps N/A as
// the strongest code of each.
func blendTable() condition.RawTable {
	base := testkit.Fixture()
	single := maps.Clone(base.Rows[0])
	single["Experiment"] = "Simple_RT"
	single["Stimulus-Stimulus Congruency"] = "N/A"

	table := condition.RawTable{Headers: base.Headers, Rows: []condition.RawRow{single}}
	overlap := []string{"Disjoint - Modality", "Identical", "Disjoint - Modality", "Identical"}
	mapping := []string{"Compatible", "Arbitrary", "Incompatible", "Compatible"}
	cue := []string{"None/Implicit", "Arbitrary", "None/Implicit", "Arbitrary"}
	for i := range overlap {
		dual := maps.Clone(base.Rows[1])
		dual["Experiment"] = "PRP_" + strings.Repeat("I", i+1)
		dual["Response Set Overlap"] = overlap[i]
		dual["Task 2 Stimulus-Response Mapping"] = mapping[i]
		dual["Task 2 Cue Type"] = cue[i]
		table.Rows = append(table.Rows, dual)
	}
	return table
}

func TestInterpolationRepairAtHalfway(t *testing.T) {
	p := newPipelineFrom(t, blendTable())
	require.Equal(t, paradigm.SingleTask, p.labels[0])
	require.Equal(t, paradigm.DualTask, p.labels[1])

	ips, skipped := InterpolatePairs(p.centroids, []Pair{{From: paradigm.SingleTask, To: paradigm.DualTask}}, []float64{0.5})
	require.Empty(t, skipped)
	require.Len(t, ips, 1)

	rec, err := p.engine.ReconstructInterpolation(ips[0])
	require.NoError(t, err)
	assert.True(t, rec.Row.Get("Trial Transition Type").Equal(condition.Category("Pure")))
	assert.True(t, rec.Row.Get("Response Set Overlap").IsNA())
	assert.True(t, rec.Row.Get("Task 2 Stimulus-Response Mapping").IsNA())
	assert.True(t, rec.Row.Get("Task 2 Cue Type").IsNA())

	repaired, outcome := repair.NewRepairer(p.schema).Repair(rec.Row, rec.Features)
	assert.GreaterOrEqual(t, outcome.Votes, 4)
	assert.True(t, outcome.SingleTask)
	for _, f := range p.schema.Repair.SecondTaskFields {
		assert.True(t, repaired.Get(f).IsNA(), f)
	}
	assert.True(t, repaired.Get("Task 2 Difficulty").IsNA())
}

// The full pipeline is lossless on training rows: decoding the inverse of the
// latent projection gives back every cleaned field. Missing numerics are
// imputed, so they only come back as numbers.
func TestFullRowRoundTrip(t *testing.T) {
	table := testkit.NewDesignSpaceGenerator(testkit.GeneratorConfig{ConditionsPerParadigm: 6, Seed: 11}).Generate()
	table.Rows[0]["Trial Transition Type"] = "Not Specified"
	table.Rows[1]["Task 1 CSI"] = "N/A"

	s := schema.MustDefault()
	rows := cleaning.NewRowCleaner(s).CleanTable(table)
	labels := paradigm.NewClassifier(s.Paradigm).ClassifyAll(rows)
	require.True(t, rows[0].Get("Trial Transition Type").IsMissing())
	require.True(t, rows[1].Get("Task 1 CSI").IsNA())

	fitted, err := encoding.NewEncoder(s, encoding.DefaultOptions()).Fit(rows, labels)
	require.NoError(t, err)
	x, err := fitted.Encode(rows, labels)
	require.NoError(t, err)
	pca := decomposition.NewPCA(0)
	z, err := pca.FitTransform(x)
	require.NoError(t, err)
	back, err := pca.InverseTransform(z)
	require.NoError(t, err)
	decoded, err := fitted.Decode(back)
	require.NoError(t, err)
	require.Len(t, decoded, len(rows))

	for i, want := range rows {
		got := decoded[i]
		for _, name := range want.Names() {
			w, g := want.Get(name), got.Get(name)
			_, numeric := s.NumericByName(name)
			switch {
			case w.IsMissing() && numeric:
				assert.True(t, g.IsNumber(), "%s row %d: got %+v", name, i, g)
			case w.IsNumber():
				require.True(t, g.IsNumber(), "%s row %d: want %v, got %+v", name, i, w.Num, g)
				assert.InDelta(t, w.Num, g.Num, 1e-8*math.Max(1, math.Abs(w.Num)), "%s row %d", name, i)
			default:
				assert.True(t, w.Equal(g), "%s row %d: want %+v, got %+v", name, i, w, g)
			}
		}
	}
}

func TestPlotPoints(t *testing.T) {
	p := newPipeline(t)
	ids := make([]string, len(p.rows))
	for i, r := range p.rows {
		ids[i] = r.ID
	}

	empirical, err := EmpiricalPoints(p.z, ids, p.labels)
	require.NoError(t, err)
	assert.Len(t, empirical, len(p.rows))
	assert.Equal(t, run.Empirical, empirical[0].Type)

	centroids := CentroidPoints(p.centroids)
	require.NotEmpty(t, centroids)
	assert.Equal(t, paradigm.DualTask, centroids[0].Paradigm)
	assert.Equal(t, run.Centroid, centroids[0].Type)

	ips, _ := InterpolatePairs(p.centroids, DefaultPairs(), []float64{0.5})
	points := InterpolatedPoints(ips)
	assert.Len(t, points, len(ips))
	for _, pt := range points {
		assert.Equal(t, run.Interpolated, pt.Type)
		assert.Equal(t, 0.5, pt.Alpha)
	}

	_, err = EmpiricalPoints(p.z, ids[:1], p.labels)
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
}
