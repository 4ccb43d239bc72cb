package app

import (
	"context"
	"time"

	"designspace/adapters/decomposition"
	"designspace/domain/condition"
	"designspace/domain/core"
	"designspace/domain/paradigm"
	"designspace/domain/run"
	"designspace/domain/schema"
	"designspace/internal"
	"designspace/internal/cleaning"
	"designspace/internal/encoding"
	"designspace/internal/errors"
	"designspace/internal/latent"
	"designspace/internal/repair"
	"designspace/internal/report"
	"designspace/ports"
)

// DecomposerFactory builds a fresh decomposition for an encoded layout
type DecomposerFactory func(components int, features []string) ports.Decomposer

// PCAFactory is the default decomposition
func PCAFactory(components int, features []string) ports.Decomposer {
	pca := decomposition.NewPCA(components)
	pca.SetFeatureNames(features)
	return pca
}

type varianceReporter interface {
	ExplainedVarianceRatio() ([]float64, error)
}

type loadingsReporter interface {
	Loadings() (map[string][]float64, error)
}

// AnalysisService runs the clean, classify, encode, decompose, interpolate and
// reconstruct pipeline over a design-space table.
type AnalysisService struct {
	schema     *schema.Schema
	opts       AnalysisOptions
	decomposer DecomposerFactory
	repo       ports.RunRepository
	logger     *internal.Logger
}

// NewAnalysisService creates an analysis service. repo may be nil, in which
// case runs are not persisted.
func NewAnalysisService(s *schema.Schema, opts AnalysisOptions, repo ports.RunRepository, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		schema:     s,
		opts:       opts,
		decomposer: PCAFactory,
		repo:       repo,
		logger:     logger,
	}
}

// WithDecomposer replaces the decomposition factory
func (s *AnalysisService) WithDecomposer(f DecomposerFactory) *AnalysisService {
	s.decomposer = f
	return s
}

// Classifier returns the rule chain configured for this service
func (s *AnalysisService) Classifier() *paradigm.Classifier {
	cfg := s.schema.Paradigm
	if s.opts.DualTaskGate != "" {
		cfg.DualTaskGate = s.opts.DualTaskGate
	}
	cfg.Legacy = s.opts.LegacyChain
	return paradigm.NewClassifier(cfg)
}

// Prepare cleans and classifies a raw table
func (s *AnalysisService) Prepare(table condition.RawTable) ([]condition.Row, []paradigm.Paradigm, error) {
	rows := cleaning.NewRowCleaner(s.schema).CleanTable(table)
	if len(rows) == 0 {
		return nil, nil, errors.Wrap(core.ErrEmptyDataset, "no conditions to analyze")
	}
	return rows, s.Classifier().ClassifyAll(rows), nil
}

// inverter picks the reconstruction path for a fitted decomposition
func (s *AnalysisService) inverter(dec ports.Decomposer, fitted *encoding.FittedState) latent.Inverter {
	if !s.opts.FactorInverse {
		return dec
	}
	fm, ok := dec.(ports.FactorModel)
	if !ok {
		s.logger.Warn("[analysis] decomposition exposes no factor weights, using its inverse")
		return dec
	}
	return decomposition.NewWeightsReconstructor(fm, fitted.FeatureNames())
}

// Run executes a full analysis. The latent path needs the dense encoding;
// the sparse encoding is served by LongFormat.
func (s *AnalysisService) Run(ctx context.Context, table condition.RawTable) (*AnalysisResult, error) {
	start := time.Now()
	if s.opts.Encoding.Strategy == encoding.Sparse {
		return nil, errors.InvalidInput("latent analysis requires the dense encoding strategy")
	}

	rows, labels, err := s.Prepare(table)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[analysis] %d conditions classified: %v", len(rows), paradigm.Counts(labels))

	fitted, err := encoding.NewEncoder(s.schema, s.opts.Encoding).Fit(rows, labels)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fit encoder")
	}
	x, err := fitted.EncodeParallel(ctx, rows, labels, s.opts.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode conditions")
	}
	s.logger.Debug("[analysis] encoded %d features: %s", fitted.Width(), fitted)

	dec := s.decomposer(s.opts.Components, fitted.FeatureNames())
	z, err := dec.FitTransform(x)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fit decomposition")
	}
	_, k := z.Dims()

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	points, err := latent.EmpiricalPoints(z, ids, labels)
	if err != nil {
		return nil, err
	}
	centroids, err := latent.Centroids(z, labels)
	if err != nil {
		return nil, err
	}
	points = append(points, latent.CentroidPoints(centroids)...)

	ips, skipped := latent.InterpolatePairs(centroids, s.opts.Pairs, s.opts.Alphas)
	for _, sp := range skipped {
		s.logger.Warn("[analysis] skipped %s -> %s: %s", sp.From, sp.To, sp.Reason)
	}
	points = append(points, latent.InterpolatedPoints(ips)...)

	result := &AnalysisResult{
		Rows:       rows,
		Labels:     labels,
		Centroids:  centroids,
		Points:     points,
		Skipped:    skipped,
		schema:     s.schema,
		fitted:     fitted,
		cleaner:    cleaning.NewRowCleaner(s.schema),
		classifier: s.Classifier(),
		engine:     latent.NewEngine(s.schema, fitted, s.inverter(dec, fitted)),
	}
	if s.opts.Repair {
		result.repairer = repair.NewRepairer(s.schema)
	}
	if vr, ok := dec.(varianceReporter); ok {
		if ratios, err := vr.ExplainedVarianceRatio(); err == nil {
			result.ExplainedVariance = ratios
		}
	}
	if lr, ok := dec.(loadingsReporter); ok {
		if loadings, err := lr.Loadings(); err == nil {
			result.Loadings = loadings
		}
	}

	if err := s.reconstruct(ctx, result, ips); err != nil {
		return nil, err
	}

	summary, err := report.Summarize(rows, labels, s.schema.SummaryColumns)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize conditions")
	}
	summary.Blocks, summary.BlockCounts, err = report.SummarizeBlocks(rows, labels, report.BlockIDs(table, s.schema.IDColumn))
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize blocks")
	}
	result.Summary = summary

	fp := run.NewFingerprint(s.schema.Hash(), fitted.LayoutHash(), string(fitted.Strategy()), k, CodeVersion)
	manifest := run.NewManifest(core.NewRunID(), s.schema.Version, len(rows), fp)
	manifest.Complete()
	result.Manifest = *manifest

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, result.Record()); err != nil {
			return nil, errors.Wrapf(err, "failed to persist run %s", manifest.RunID)
		}
	}

	s.logger.Info("[analysis] run %s completed in %v: %d points, %d reconstructions, %d skipped",
		manifest.RunID, time.Since(start).Round(time.Millisecond), len(result.Points), len(result.Reconstructions), len(skipped))
	return result, nil
}

// reconstruct decodes every centroid and interpolated point, repairing each.
func (s *AnalysisService) reconstruct(ctx context.Context, result *AnalysisResult, ips []latent.Interpolation) error {
	for _, p := range paradigm.All {
		c, ok := result.Centroids[p]
		if !ok {
			continue
		}
		rec, err := result.engine.Reconstruct(string(p)+" centroid", c)
		if err != nil {
			return errors.Wrapf(err, "failed to reconstruct %s centroid", p)
		}
		rec.From, rec.To = p, p
		result.Reconstructions = append(result.Reconstructions, result.repaired(rec))
	}

	for _, ip := range ips {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := result.engine.ReconstructInterpolation(ip)
		if err != nil {
			return errors.Wrapf(err, "failed to reconstruct %s -> %s @ %.2f", ip.From, ip.To, ip.Alpha)
		}
		result.Reconstructions = append(result.Reconstructions, result.repaired(rec))
	}
	return nil
}

// LongFormat encodes the table with the configured strategy and melts it
// into view-tagged records for multi-view factor models, with the per-view
// likelihoods such a model should use. Each sample is grouped by its
// paradigm label.
func (s *AnalysisService) LongFormat(ctx context.Context, table condition.RawTable) ([]encoding.LongRecord, []string, []string, error) {
	rows, labels, err := s.Prepare(table)
	if err != nil {
		return nil, nil, nil, err
	}
	fitted, err := encoding.NewEncoder(s.schema, s.opts.Encoding).Fit(rows, labels)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to fit encoder")
	}
	x, err := fitted.EncodeParallel(ctx, rows, labels, s.opts.Workers)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to encode conditions")
	}

	ids := make([]string, len(rows))
	groups := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		groups[i] = string(labels[i])
	}
	records, err := encoding.ToLong(fitted, s.schema, x, ids, groups)
	if err != nil {
		return nil, nil, nil, err
	}
	views, likelihoods := encoding.Likelihoods(records)
	s.logger.Info("[analysis] long format: %d records over %d views", len(records), len(views))
	return records, views, likelihoods, nil
}
