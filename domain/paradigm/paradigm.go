package paradigm

import (
	"fmt"

	"designspace/domain/condition"
)

// Paradigm is the coarse experimental-design category of a condition. It is
// derived from cleaned fields and never stored in the encoded matrix.
type Paradigm string

const (
	DualTask      Paradigm = "Dual-Task/PRP"
	TaskSwitching Paradigm = "Task-Switching"
	Interference  Paradigm = "Interference"
	SingleTask    Paradigm = "Single-Task"
	Other         Paradigm = "Other"
)

// All lists every paradigm in rule-chain order.
var All = []Paradigm{DualTask, TaskSwitching, Interference, SingleTask, Other}

// Parse converts a label back into a Paradigm
func Parse(s string) (Paradigm, error) {
	for _, p := range All {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown paradigm %q", s)
}

// HasSecondTask reports paradigms in which a second task genuinely exists.
func (p Paradigm) HasSecondTask() bool {
	return p == DualTask || p == TaskSwitching
}

func (p Paradigm) String() string { return string(p) }

// DualTaskGate selects how the second-task response probability gates the
// Dual-Task/PRP rule.
type DualTaskGate string

const (
	// GateExact labels Dual-Task/PRP only when the probability equals 1.
	GateExact DualTaskGate = "exact"
	// GatePositive labels Dual-Task/PRP for any probability above 0.
	GatePositive DualTaskGate = "positive"
)

// Config names the columns the rule chain reads.
type Config struct {
	ResponseProbability string       `yaml:"response_probability"`
	SwitchRate          string       `yaml:"switch_rate"`
	Conflict            []string     `yaml:"conflict"`
	DualTaskGate        DualTaskGate `yaml:"dual_task_gate"`
	// Legacy drops the Single-Task catch-all so unmatched rows fall to Other.
	Legacy bool `yaml:"legacy"`
}

// Rule is one (predicate, label) step of the chain.
type Rule struct {
	Label Paradigm
	Match func(condition.Row) bool
}

// Classifier evaluates an ordered rule list top to bottom; first match wins.
type Classifier struct {
	rules    []Rule
	fallback Paradigm
}

// NewClassifier builds the rule chain for cfg.
func NewClassifier(cfg Config) *Classifier {
	gate := cfg.DualTaskGate
	if gate == "" {
		gate = GateExact
	}

	rules := []Rule{
		{Label: DualTask, Match: func(r condition.Row) bool {
			p := r.Get(cfg.ResponseProbability)
			if !p.IsNumber() {
				return false
			}
			if gate == GatePositive {
				return p.Num > 0
			}
			return p.Num == 1
		}},
		{Label: TaskSwitching, Match: func(r condition.Row) bool {
			s := r.Get(cfg.SwitchRate)
			return s.IsNumber() && s.Num > 0
		}},
		{Label: Interference, Match: func(r condition.Row) bool {
			for _, col := range cfg.Conflict {
				if r.Get(col).IsDefined() {
					return true
				}
			}
			return false
		}},
	}

	c := &Classifier{rules: rules, fallback: Other}
	if !cfg.Legacy {
		c.rules = append(c.rules, Rule{Label: SingleTask, Match: func(condition.Row) bool { return true }})
	}
	return c
}

// Classify returns exactly one paradigm for the row. It is total and has no
// side effects.
func (c *Classifier) Classify(r condition.Row) Paradigm {
	for _, rule := range c.rules {
		if rule.Match(r) {
			return rule.Label
		}
	}
	return c.fallback
}

// ClassifyAll labels rows in input order.
func (c *Classifier) ClassifyAll(rows []condition.Row) []Paradigm {
	out := make([]Paradigm, len(rows))
	for i, r := range rows {
		out[i] = c.Classify(r)
	}
	return out
}

// Counts tallies labels per paradigm.
func Counts(labels []Paradigm) map[Paradigm]int {
	counts := make(map[Paradigm]int)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}
