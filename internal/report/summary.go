// Package report summarizes a classified design space and renders analysis
// results as markdown and HTML.
package report

import (
	"regexp"
	"sort"
	"strings"

	"designspace/domain/condition"
	"designspace/domain/core"
	"designspace/domain/paradigm"

	"github.com/montanaflynn/stats"
)

var paperPattern = regexp.MustCompile(`([A-Za-z\s.&]+)\s\(?(\d{4})\)?`)

// ExtractPaper pulls "Author Year" out of an experiment name such as
// "Telford 1931 Auditory RT (500ms SOA)".
func ExtractPaper(experiment string) (string, bool) {
	m := paperPattern.FindStringSubmatch(experiment)
	if m == nil {
		return "", false
	}
	author := strings.TrimSpace(m[1])
	if author == "" {
		return "", false
	}
	return author + " " + m[2], true
}

// ParadigmCount is one line of the paradigm distribution
type ParadigmCount struct {
	Paradigm paradigm.Paradigm `json:"paradigm"`
	Count    int               `json:"count"`
	Share    float64           `json:"share"`
}

// PaperParadigm is the most frequent paradigm among a paper's conditions
type PaperParadigm struct {
	Paper      string            `json:"paper"`
	Paradigm   paradigm.Paradigm `json:"paradigm"`
	Conditions int               `json:"conditions"`
}

// Description mirrors a describe() row for one variable
type Description struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Describe computes summary statistics. Std is the sample deviation and is 0
// for a single value.
func Describe(data []float64) Description {
	d := Description{Count: len(data)}
	if len(data) == 0 {
		return d
	}
	d.Mean, _ = stats.Mean(data)
	d.Min, _ = stats.Min(data)
	d.Max, _ = stats.Max(data)
	d.Median, _ = stats.Median(data)
	d.Q25, _ = stats.Percentile(data, 25)
	d.Q75, _ = stats.Percentile(data, 75)
	if len(data) > 1 {
		d.Std, _ = stats.StandardDeviationSample(data)
	}
	return d
}

// VariableSummary describes one continuous column per paradigm
type VariableSummary struct {
	Column     string                            `json:"column"`
	ByParadigm map[paradigm.Paradigm]Description `json:"by_paradigm"`
}

// Summary is the paradigm-level overview of a design space
type Summary struct {
	Total      int               `json:"total"`
	Counts     []ParadigmCount   `json:"counts"`
	Papers     []PaperParadigm   `json:"papers"`
	Unmatched  int               `json:"unmatched"`
	Continuous []VariableSummary `json:"continuous"`

	Blocks      []BlockParadigm `json:"blocks,omitempty"`
	BlockCounts []ParadigmCount `json:"block_counts,omitempty"`
}

func distribution(labels []paradigm.Paradigm) []ParadigmCount {
	var out []ParadigmCount
	counts := paradigm.Counts(labels)
	for _, p := range paradigm.All {
		if n := counts[p]; n > 0 {
			out = append(out, ParadigmCount{
				Paradigm: p,
				Count:    n,
				Share:    float64(n) / float64(len(labels)),
			})
		}
	}
	return out
}

// Summarize builds the overview. columns lists the continuous variables to
// describe.
func Summarize(rows []condition.Row, labels []paradigm.Paradigm, columns []string) (*Summary, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptyDataset
	}
	if len(labels) != len(rows) {
		return nil, core.NewShapeError("labels", len(rows), 1, len(labels), 1)
	}

	s := &Summary{Total: len(rows)}

	s.Counts = distribution(labels)

	byPaper := make(map[string][]paradigm.Paradigm)
	for i, r := range rows {
		paper, ok := ExtractPaper(r.ID)
		if !ok {
			s.Unmatched++
			continue
		}
		byPaper[paper] = append(byPaper[paper], labels[i])
	}
	for paper, ls := range byPaper {
		s.Papers = append(s.Papers, PaperParadigm{Paper: paper, Paradigm: mode(ls), Conditions: len(ls)})
	}
	sort.Slice(s.Papers, func(i, j int) bool { return s.Papers[i].Paper < s.Papers[j].Paper })

	for _, col := range columns {
		values := make(map[paradigm.Paradigm][]float64)
		for i, r := range rows {
			if v := r.Get(col); v.IsNumber() {
				values[labels[i]] = append(values[labels[i]], v.Num)
			}
		}
		vs := VariableSummary{Column: col, ByParadigm: make(map[paradigm.Paradigm]Description, len(values))}
		for p, data := range values {
			vs.ByParadigm[p] = Describe(data)
		}
		s.Continuous = append(s.Continuous, vs)
	}
	return s, nil
}

// mode returns the most frequent label. Ties go to the alphabetically first
// label.
func mode(labels []paradigm.Paradigm) paradigm.Paradigm {
	counts := paradigm.Counts(labels)
	seen := make([]paradigm.Paradigm, 0, len(counts))
	for p := range counts {
		seen = append(seen, p)
	}
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })

	best, bestN := paradigm.Other, 0
	for _, p := range seen {
		if counts[p] > bestN {
			best, bestN = p, counts[p]
		}
	}
	return best
}
