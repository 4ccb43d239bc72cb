package app

import (
	"fmt"
	"strings"

	"designspace/domain/paradigm"
	"designspace/internal/config"
	"designspace/internal/encoding"
	"designspace/internal/errors"
	"designspace/internal/latent"
)

// CodeVersion is recorded in every run fingerprint
const CodeVersion = "v0.3.0"

// AnalysisOptions controls one analysis run
type AnalysisOptions struct {
	Components    int
	Alphas        []float64
	Pairs         []latent.Pair
	Encoding      encoding.Options
	DualTaskGate  paradigm.DualTaskGate
	LegacyChain   bool
	Workers       int
	Repair        bool
	// FactorInverse reconstructs through the decomposition's factor
	// weights instead of its own inverse.
	FactorInverse bool
}

// DefaultAnalysisOptions keeps every component, interpolates the default
// pairs at quarter steps and repairs synthetic rows.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		Components:   0,
		Alphas:       []float64{0.25, 0.5, 0.75},
		Pairs:        latent.DefaultPairs(),
		Encoding:     encoding.DefaultOptions(),
		DualTaskGate: paradigm.GateExact,
		Workers:      4,
		Repair:       true,
	}
}

// OptionsFromConfig converts validated configuration into run options
func OptionsFromConfig(cfg config.AnalysisConfig) (AnalysisOptions, error) {
	opts := DefaultAnalysisOptions()
	opts.Components = cfg.Components
	opts.Alphas = append([]float64(nil), cfg.Alphas...)
	opts.LegacyChain = cfg.LegacyChain
	opts.Repair = cfg.Repair
	opts.FactorInverse = cfg.FactorInverse
	if cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}
	if cfg.DualTaskGate != "" {
		opts.DualTaskGate = paradigm.DualTaskGate(cfg.DualTaskGate)
	}

	strategy, err := encoding.ParseStrategy(cfg.Strategy)
	if err != nil {
		return opts, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	opts.Encoding.Strategy = strategy
	opts.Encoding.BinaryCollapse = cfg.BinaryCollapse

	if len(cfg.Pairs) > 0 {
		pairs, err := ParsePairs(cfg.Pairs)
		if err != nil {
			return opts, errors.WithCode(errors.CodeConfigInvalid, err)
		}
		opts.Pairs = pairs
	}
	return opts, nil
}

// ParsePairs parses "From>To" paradigm pairs, e.g. "Single-Task>Dual-Task/PRP".
func ParsePairs(specs []string) ([]latent.Pair, error) {
	pairs := make([]latent.Pair, 0, len(specs))
	for _, raw := range specs {
		from, to, ok := strings.Cut(raw, ">")
		if !ok {
			return nil, fmt.Errorf("pair %q: expected From>To", raw)
		}
		a, err := paradigm.Parse(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("pair %q: %w", raw, err)
		}
		b, err := paradigm.Parse(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("pair %q: %w", raw, err)
		}
		pairs = append(pairs, latent.Pair{From: a, To: b})
	}
	return pairs, nil
}
