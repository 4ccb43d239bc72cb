package encoding

import (
	"context"
	"math"
	"testing"

	"designspace/domain/condition"
	"designspace/domain/core"
	"designspace/domain/paradigm"
	"designspace/domain/schema"
	"designspace/internal/cleaning"
	"designspace/internal/missingness"
	"designspace/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func fixtureRows(t *testing.T, s *schema.Schema) ([]condition.Row, []paradigm.Paradigm) {
	t.Helper()
	rows := cleaning.NewRowCleaner(s).CleanTable(testkit.Fixture())
	labels := paradigm.NewClassifier(s.Paradigm).ClassifyAll(rows)
	return rows, labels
}

func assertSameRow(t *testing.T, want, got condition.Row) {
	t.Helper()
	for _, name := range want.Names() {
		w, g := want.Get(name), got.Get(name)
		if w.IsNumber() {
			require.True(t, g.IsNumber(), "%s: want number %v, got %+v", name, w.Num, g)
			assert.InDelta(t, w.Num, g.Num, 1e-8*math.Max(1, math.Abs(w.Num)), name)
			continue
		}
		assert.True(t, w.Equal(g), "%s: want %+v, got %+v", name, w, g)
	}
}

func TestDenseRoundTrip_Fixture(t *testing.T) {
	s := schema.MustDefault()
	rows, labels := fixtureRows(t, s)

	fs, err := NewEncoder(s, DefaultOptions()).Fit(rows, labels)
	require.NoError(t, err)

	m, err := fs.Encode(rows, labels)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, fs.Width(), c)
	assert.Len(t, fs.FeatureNames(), c)

	decoded, err := fs.Decode(m)
	require.NoError(t, err)
	for i := range rows {
		assertSameRow(t, rows[i], decoded[i])
	}
}

func TestDenseRoundTrip_MissingCategoryAndUnflaggedNA(t *testing.T) {
	s := schema.MustDefault()
	table := testkit.Fixture()
	table.Rows[2]["Trial Transition Type"] = "Not Specified"
	table.Rows[0]["Task 1 CSI"] = "N/A"
	rows := cleaning.NewRowCleaner(s).CleanTable(table)
	labels := paradigm.NewClassifier(s.Paradigm).ClassifyAll(rows)
	require.True(t, rows[2].Get("Trial Transition Type").IsMissing())
	require.True(t, rows[0].Get("Task 1 CSI").IsNA())

	fs, err := NewEncoder(s, DefaultOptions()).Fit(rows, labels)
	require.NoError(t, err)

	// missing takes no vocabulary slot and N/A stays out of it
	assert.Equal(t, []string{"Pure"}, fs.Vocabulary("Trial Transition Type"))
	// Task 1 CSI declares no flag but held N/A during fit
	assert.Contains(t, fs.FlagLinks(), missingness.NewLink("Task 1 CSI"))
	assert.Contains(t, fs.FeatureNames(), "Task 1 CSI is NA")

	m, err := fs.Encode(rows, labels)
	require.NoError(t, err)
	decoded, err := fs.Decode(m)
	require.NoError(t, err)
	for i := range rows {
		assertSameRow(t, rows[i], decoded[i])
	}
	assert.True(t, decoded[2].Get("Trial Transition Type").IsMissing())
	assert.True(t, decoded[0].Get("Task 1 CSI").IsNA())
	assert.True(t, decoded[1].Get("Task 1 CSI").IsNumber())
}

func TestMissingCategoryDisablesBinaryCollapse(t *testing.T) {
	s, err := schema.Parse([]byte(binarySchema))
	require.NoError(t, err)

	rows := []condition.Row{condition.NewRow("a"), condition.NewRow("b"), condition.NewRow("c")}
	rows[0].Set("Cue", condition.Category("A"))
	rows[1].Set("Cue", condition.Category("B"))
	rows[2].Set("Cue", condition.Missing())

	fs, err := NewEncoder(s, Options{Strategy: Dense, BinaryCollapse: true}).Fit(rows, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cue_A", "Cue_B"}, fs.FeatureNames())

	vec, err := fs.EncodeRow(rows[2], "")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, vec)

	decoded, err := fs.DecodeRow([]float64{1e-12, -1e-12})
	require.NoError(t, err)
	assert.True(t, decoded.Get("Cue").IsMissing())
}

func TestDenseLayout(t *testing.T) {
	s := schema.MustDefault()
	rows, labels := fixtureRows(t, s)
	fs, err := NewEncoder(s, DefaultOptions()).Fit(rows, labels)
	require.NoError(t, err)

	names := fs.FeatureNames()
	// numerics first, in declaration order
	for i, col := range s.Numeric {
		assert.Equal(t, col.Name, names[i])
	}
	assert.Equal(t, "Stimulus-Stimulus Congruency_Incongruent", names[len(s.Numeric)])
	assert.Equal(t, "Stimulus-Stimulus Congruency_N/A", names[len(s.Numeric)+1])
	assert.Equal(t, "Task 2 Difficulty is NA", names[len(names)-1])

	assert.Equal(t, []string{"Incongruent", "N/A", "Neutral"}, fs.Vocabulary("Stimulus-Stimulus Congruency"))
	assert.Equal(t, "Task 2 Difficulty", fs.FeatureSources()[len(names)-1])
}

func TestDenseFlagsAndPlaceholders(t *testing.T) {
	s := schema.MustDefault()
	rows, labels := fixtureRows(t, s)
	fs, err := NewEncoder(s, DefaultOptions()).Fit(rows, labels)
	require.NoError(t, err)

	vec, err := fs.EncodeRow(rows[0], labels[0])
	require.NoError(t, err)
	features, err := fs.Features(vec)
	require.NoError(t, err)

	assert.Equal(t, 1.0, features["Task 2 Difficulty is NA"])
	assert.Equal(t, 1.0, features["Inter-task SOA is NA"])
	assert.Equal(t, 0.0, features["Distractor SOA is NA"])

	// the Stroop row is Interference, so its second-task difficulty takes
	// the sentinel rather than the fallback
	assert.Equal(t, paradigm.Interference, labels[0])
	other, err := fs.EncodeRow(rows[0], paradigm.DualTask)
	require.NoError(t, err)
	otherFeatures, _ := fs.Features(other)
	assert.Less(t, features["Task 2 Difficulty"], otherFeatures["Task 2 Difficulty"])
}

func TestUnknownCategoryEncodesAsNA(t *testing.T) {
	s := schema.MustDefault()
	rows, labels := fixtureRows(t, s)
	fs, err := NewEncoder(s, DefaultOptions()).Fit(rows, labels)
	require.NoError(t, err)

	row := rows[2].Clone()
	// vocabulary contains N/A
	row.Set("Stimulus-Stimulus Congruency", condition.Category("Sideways"))
	// vocabulary is {Compatible, Incompatible}, no N/A
	row.Set("Task 1 Stimulus-Response Mapping", condition.Category("Arbitrary"))

	vec, err := fs.EncodeRow(row, labels[2])
	require.NoError(t, err)
	features, _ := fs.Features(vec)
	assert.Equal(t, 1.0, features["Stimulus-Stimulus Congruency_N/A"])
	assert.Equal(t, 0.0, features["Task 1 Stimulus-Response Mapping_Compatible"])
	assert.Equal(t, 0.0, features["Task 1 Stimulus-Response Mapping_Incompatible"])

	decoded, err := fs.DecodeRow(vec)
	require.NoError(t, err)
	assert.True(t, decoded.Get("Stimulus-Stimulus Congruency").IsNA())
	assert.True(t, decoded.Get("Task 1 Stimulus-Response Mapping").IsNA())
}

const binarySchema = `
version: test
id_column: id
categorical:
  - name: Cue
`

func TestBinaryCollapseThreshold(t *testing.T) {
	s, err := schema.Parse([]byte(binarySchema))
	require.NoError(t, err)

	rows := []condition.Row{condition.NewRow("a"), condition.NewRow("b")}
	rows[0].Set("Cue", condition.Category("A"))
	rows[1].Set("Cue", condition.Category("B"))

	fs, err := NewEncoder(s, Options{Strategy: Dense, BinaryCollapse: true}).Fit(rows, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cue_B"}, fs.FeatureNames())

	high, err := fs.DecodeRow([]float64{0.9})
	require.NoError(t, err)
	assert.Equal(t, "B", high.Get("Cue").Code)

	low, err := fs.DecodeRow([]float64{0.1})
	require.NoError(t, err)
	assert.Equal(t, "A", low.Get("Cue").Code)
}

func TestOneHotDecodeNearestToOne(t *testing.T) {
	s, err := schema.Parse([]byte(binarySchema))
	require.NoError(t, err)
	rows := []condition.Row{condition.NewRow("a"), condition.NewRow("b")}
	rows[0].Set("Cue", condition.Category("A"))
	rows[1].Set("Cue", condition.Category("B"))

	fs, err := NewEncoder(s, DefaultOptions()).Fit(rows, nil)
	require.NoError(t, err)

	got, _ := fs.DecodeRow([]float64{0.2, 0.7})
	assert.Equal(t, "B", got.Get("Cue").Code)

	// ties go to the first vocabulary entry
	got, _ = fs.DecodeRow([]float64{0.5, 0.5})
	assert.Equal(t, "A", got.Get("Cue").Code)

	got, _ = fs.DecodeRow([]float64{0, 0})
	assert.True(t, got.Get("Cue").IsNA())
}

func TestDegenerateNumericColumn(t *testing.T) {
	s, err := schema.Parse([]byte(`
id_column: id
numeric:
  - {name: x, cleaner: numeric, placeholder: {strategy: mean}}
  - {name: y, cleaner: numeric, placeholder: {strategy: median}}
`))
	require.NoError(t, err)

	rows := []condition.Row{condition.NewRow("a"), condition.NewRow("b")}
	for _, r := range rows {
		r.Set("x", condition.Number(7))
		r.Set("y", condition.Missing())
	}
	fs, err := NewEncoder(s, DefaultOptions()).Fit(rows, nil)
	require.NoError(t, err)

	m, err := fs.Encode(rows, nil)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.False(t, math.IsNaN(m.At(i, j)))
			assert.False(t, math.IsInf(m.At(i, j), 0))
		}
	}
	decoded, _ := fs.Decode(m)
	assert.Equal(t, 7.0, decoded[0].Get("x").Float())
}

func TestUnfittedState(t *testing.T) {
	var fs FittedState
	_, err := fs.Encode([]condition.Row{condition.NewRow("a")}, nil)
	assert.ErrorIs(t, err, core.ErrNotFitted)
	_, err = fs.Decode(mat.NewDense(1, 1, nil))
	assert.ErrorIs(t, err, core.ErrNotFitted)
	_, err = fs.DecodeRow([]float64{1})
	assert.ErrorIs(t, err, core.ErrNotFitted)
	assert.Equal(t, "encoding(unfitted)", fs.String())
}

func TestShapeErrors(t *testing.T) {
	s := schema.MustDefault()
	rows, labels := fixtureRows(t, s)
	fs, err := NewEncoder(s, DefaultOptions()).Fit(rows, labels)
	require.NoError(t, err)

	_, err = fs.Decode(mat.NewDense(2, fs.Width()+1, nil))
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
	_, err = fs.Encode(rows, labels[:1])
	assert.ErrorIs(t, err, core.ErrShapeMismatch)
	_, err = NewEncoder(s, DefaultOptions()).Fit(nil, nil)
	assert.ErrorIs(t, err, core.ErrEmptyDataset)
}

func TestUnknownStrategy(t *testing.T) {
	_, err := NewEncoder(schema.MustDefault(), Options{Strategy: "wide"}).Fit([]condition.Row{condition.NewRow("a")}, nil)
	assert.ErrorIs(t, err, core.ErrUnknownStrategy)

	_, err = ParseStrategy("wide")
	assert.ErrorIs(t, err, core.ErrUnknownStrategy)
	st, err := ParseStrategy("")
	assert.NoError(t, err)
	assert.Equal(t, Dense, st)
}

func TestSparseRoundTrip(t *testing.T) {
	s := schema.MustDefault()
	rows, labels := fixtureRows(t, s)

	fs, err := NewEncoder(s, Options{Strategy: Sparse}).Fit(rows, labels)
	require.NoError(t, err)
	assert.Equal(t, len(s.Numeric)+len(s.Categorical)+len(s.YesNo), fs.Width())

	m, err := fs.Encode(rows, labels)
	require.NoError(t, err)

	features, _ := fs.Features(m.RawRowView(0))
	assert.True(t, math.IsNaN(features["Task 2 Difficulty"]))
	assert.Equal(t, -1.0, features["Stimulus-Stimulus Congruency"])
	assert.Equal(t, 1.0, features["RSI is Predictable"])

	decoded, err := fs.Decode(m)
	require.NoError(t, err)
	for i := range rows {
		assertSameRow(t, rows[i], decoded[i])
	}
}

func TestEncodeParallelPreservesOrder(t *testing.T) {
	s := schema.MustDefault()
	table := testkit.NewDesignSpaceGenerator(testkit.DefaultGeneratorConfig()).Generate()
	rows := cleaning.NewRowCleaner(s).CleanTable(table)
	labels := paradigm.NewClassifier(s.Paradigm).ClassifyAll(rows)

	fs, err := NewEncoder(s, DefaultOptions()).Fit(rows, labels)
	require.NoError(t, err)

	serial, err := fs.Encode(rows, labels)
	require.NoError(t, err)
	parallel, err := fs.EncodeParallel(context.Background(), rows, labels, 4)
	require.NoError(t, err)
	assert.True(t, mat.Equal(serial, parallel))
}

func TestEncodeParallelCancelled(t *testing.T) {
	s := schema.MustDefault()
	rows, labels := fixtureRows(t, s)
	fs, err := NewEncoder(s, DefaultOptions()).Fit(rows, labels)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fs.EncodeParallel(ctx, rows, labels, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLayoutHashTracksVocabulary(t *testing.T) {
	s := schema.MustDefault()
	rows, labels := fixtureRows(t, s)
	a, _ := NewEncoder(s, DefaultOptions()).Fit(rows, labels)
	b, _ := NewEncoder(s, DefaultOptions()).Fit(rows[:2], labels[:2])
	c, _ := NewEncoder(s, DefaultOptions()).Fit(rows, labels)

	assert.Equal(t, a.LayoutHash(), c.LayoutHash())
	assert.NotEqual(t, a.LayoutHash(), b.LayoutHash())
}
