package app

import (
	"fmt"

	"designspace/domain/condition"
	"designspace/domain/core"
	"designspace/domain/paradigm"
	"designspace/domain/run"
	"designspace/domain/schema"
	"designspace/internal/cleaning"
	"designspace/internal/encoding"
	"designspace/internal/errors"
	"designspace/internal/latent"
	"designspace/internal/repair"
	"designspace/internal/report"
)

// AnalysisResult is a completed run together with the fitted collaborators
// needed to classify and interpolate on demand. It is read-only once
// returned and safe to share between goroutines.
type AnalysisResult struct {
	Manifest          run.Manifest                    `json:"manifest"`
	Rows              []condition.Row                 `json:"-"`
	Labels            []paradigm.Paradigm             `json:"labels"`
	Centroids         map[paradigm.Paradigm][]float64 `json:"centroids"`
	Points            []run.PlotPoint                 `json:"points"`
	Reconstructions   []run.Reconstruction            `json:"reconstructions"`
	Skipped           []run.SkippedPair               `json:"skipped,omitempty"`
	ExplainedVariance []float64                       `json:"explained_variance,omitempty"`
	Loadings          map[string][]float64            `json:"loadings,omitempty"`
	Summary           *report.Summary                 `json:"summary,omitempty"`

	schema     *schema.Schema
	fitted     *encoding.FittedState
	cleaner    *cleaning.RowCleaner
	classifier *paradigm.Classifier
	engine     *latent.Engine
	repairer   *repair.Repairer
}

// Schema returns the schema the run was fitted with
func (r *AnalysisResult) Schema() *schema.Schema { return r.schema }

// Fitted returns the fitted encoder state
func (r *AnalysisResult) Fitted() *encoding.FittedState { return r.fitted }

// Record returns the persistable form of the run
func (r *AnalysisResult) Record() *run.Record {
	return &run.Record{
		Manifest:        r.Manifest,
		Points:          r.Points,
		Reconstructions: r.Reconstructions,
		Skipped:         r.Skipped,
	}
}

// PointsOf filters plot points by type; an empty type returns all of them.
func (r *AnalysisResult) PointsOf(t run.PointType) []run.PlotPoint {
	if t == "" {
		return r.Points
	}
	out := make([]run.PlotPoint, 0, len(r.Points))
	for _, p := range r.Points {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

// Classify cleans one raw row and labels it with the run's classifier
func (r *AnalysisResult) Classify(raw condition.RawRow) (condition.Row, paradigm.Paradigm) {
	row := r.cleaner.CleanRow(raw)
	return row, r.classifier.Classify(row)
}

// Interpolate reconstructs one point between two paradigm centroids.
func (r *AnalysisResult) Interpolate(from, to paradigm.Paradigm, alpha float64) (run.Reconstruction, error) {
	a, err := latent.Centroid(r.Centroids, from)
	if err != nil {
		return run.Reconstruction{}, err
	}
	b, err := latent.Centroid(r.Centroids, to)
	if err != nil {
		return run.Reconstruction{}, err
	}
	z, err := latent.Interpolate(a, b, alpha)
	if err != nil {
		return run.Reconstruction{}, err
	}
	rec, err := r.engine.ReconstructInterpolation(latent.Interpolation{From: from, To: to, Alpha: alpha, Latent: z})
	if err != nil {
		return run.Reconstruction{}, errors.Wrapf(err, "failed to reconstruct %s -> %s", from, to)
	}
	return r.repaired(rec), nil
}

func (r *AnalysisResult) repaired(rec run.Reconstruction) run.Reconstruction {
	if r.repairer == nil {
		return rec
	}
	row, outcome := r.repairer.Repair(rec.Row, rec.Features)
	rec.Row = row
	rec.Repaired = outcome.SingleTask
	return rec
}

// Feature describes one encoded column
type Feature struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	View   string `json:"view"`
}

// Features lists the encoded layout with each column's source and view
func (r *AnalysisResult) Features() []Feature {
	names, sources := r.fitted.FeatureNames(), r.fitted.FeatureSources()
	out := make([]Feature, len(names))
	for i, name := range names {
		out[i] = Feature{Name: name, Source: sources[i], View: r.schema.ViewOf(sources[i])}
	}
	return out
}

// Views lists the schema's view names
func (r *AnalysisResult) Views() []string { return r.schema.ViewNames() }

// Vocabulary returns the fitted codes of a categorical column
func (r *AnalysisResult) Vocabulary(column string) ([]string, error) {
	if _, ok := r.schema.CategoricalByName(column); !ok {
		return nil, errors.WithCode(errors.CodeNotFound, fmt.Errorf("%w: %q", core.ErrUnknownColumn, column))
	}
	return r.fitted.Vocabulary(column), nil
}

// Document assembles the report for this run
func (r *AnalysisResult) Document(title string) report.Document {
	if title == "" {
		title = fmt.Sprintf("Design-space analysis %s", r.Manifest.RunID)
	}
	return report.Document{
		Title:             title,
		Summary:           r.Summary,
		ExplainedVariance: r.ExplainedVariance,
		Reconstructions:   r.Reconstructions,
		Columns:           r.schema.Columns(),
		Skipped:           r.Skipped,
	}
}
