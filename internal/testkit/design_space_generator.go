package testkit

import (
	"fmt"
	"math/rand"
	"strconv"

	"designspace/domain/condition"
)

// GeneratorConfig configures the synthetic design-space generator
type GeneratorConfig struct {
	ConditionsPerParadigm int   `json:"conditions_per_paradigm"`
	Seed                  int64 `json:"seed"`
}

// DefaultGeneratorConfig returns sensible defaults for synthetic tables
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		ConditionsPerParadigm: 8,
		Seed:                  42,
	}
}

// DesignSpaceGenerator produces raw tables with one block of conditions per
// paradigm archetype: dual-task, task-switching, interference, single-task.
type DesignSpaceGenerator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewDesignSpaceGenerator creates a seeded generator
func NewDesignSpaceGenerator(config GeneratorConfig) *DesignSpaceGenerator {
	return &DesignSpaceGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the table. Rows are ordered by archetype.
func (g *DesignSpaceGenerator) Generate() condition.RawTable {
	table := condition.RawTable{Headers: append([]string(nil), FixtureHeaders...)}
	archetypes := []func(int) condition.RawRow{g.dualTask, g.taskSwitching, g.interference, g.singleTask}
	for _, build := range archetypes {
		for i := 0; i < g.config.ConditionsPerParadigm; i++ {
			table.Rows = append(table.Rows, build(i))
		}
	}
	return table
}

func (g *DesignSpaceGenerator) pick(options ...string) string {
	return options[g.rng.Intn(len(options))]
}

func (g *DesignSpaceGenerator) ms(lo, hi int) string {
	return strconv.Itoa(lo + 50*g.rng.Intn((hi-lo)/50+1))
}

func (g *DesignSpaceGenerator) base(id string) condition.RawRow {
	return condition.RawRow{
		"Experiment":                       id,
		"Task 2 Response Probability":      "0",
		"Inter-task SOA":                   "N/A",
		"Distractor SOA":                   "N/A",
		"Task 1 CSI":                       "0",
		"Task 2 CSI":                       "N/A",
		"Switch Rate":                      "0%",
		"Trial Transition Type":            "Pure",
		"Stimulus-Stimulus Congruency":     "N/A",
		"Stimulus-Response Congruency":     "N/A",
		"Response Set Overlap":             "N/A",
		"Task 1 Stimulus-Response Mapping": g.pick("Compatible", "Arbitrary"),
		"Task 2 Stimulus-Response Mapping": "N/A",
		"Task 1 Cue Type":                  "None/Implicit",
		"Task 2 Cue Type":                  "N/A",
		"RSI is Predictable":               g.pick("Yes", "No"),
		"RSI":                              g.ms(500, 2000),
		"Task 1 Difficulty":                strconv.Itoa(1 + g.rng.Intn(5)),
		"Task 2 Difficulty":                "N/A",
	}
}

func (g *DesignSpaceGenerator) dualTask(i int) condition.RawRow {
	r := g.base(fmt.Sprintf("Synthetic %d (PRP %d)", 1990+i, i))
	r["Task 2 Response Probability"] = "1"
	r["Inter-task SOA"] = g.ms(50, 1000)
	r["Task 2 CSI"] = "0"
	r["Response Set Overlap"] = g.pick("Disjoint - Modality", "Disjoint - Effector")
	r["Task 2 Stimulus-Response Mapping"] = g.pick("Compatible", "Arbitrary")
	r["Task 2 Cue Type"] = "None/Implicit"
	r["Task 2 Difficulty"] = strconv.Itoa(1 + g.rng.Intn(5))
	return r
}

func (g *DesignSpaceGenerator) taskSwitching(i int) condition.RawRow {
	r := g.base(fmt.Sprintf("Synthetic %d (Switch %d)", 2000+i, i))
	r["Switch Rate"] = g.pick("25%", "50%", "33%")
	r["Trial Transition Type"] = g.pick("Switch", "Repeat")
	r["Task 1 CSI"] = g.ms(0, 800)
	r["Task 2 CSI"] = r["Task 1 CSI"]
	r["Response Set Overlap"] = "Identical"
	r["Task 1 Cue Type"] = "Arbitrary"
	r["Task 2 Cue Type"] = "Arbitrary"
	r["Task 2 Stimulus-Response Mapping"] = g.pick("Compatible", "Incompatible", "Arbitrary")
	r["Task 2 Difficulty"] = strconv.Itoa(1 + g.rng.Intn(5))
	if g.rng.Intn(2) == 0 {
		r["RSI"] = "Varied (choice: 100, 600, 1100)"
	}
	return r
}

func (g *DesignSpaceGenerator) interference(i int) condition.RawRow {
	r := g.base(fmt.Sprintf("Synthetic %d (Stroop %d)", 2010+i, i))
	r["Distractor SOA"] = g.ms(0, 200)
	r["Stimulus-Stimulus Congruency"] = g.pick("Congruent", "Incongruent", "Neutral")
	if g.rng.Intn(2) == 0 {
		r["Stimulus-Response Congruency"] = g.pick("Congruent", "Incongruent")
	}
	return r
}

func (g *DesignSpaceGenerator) singleTask(i int) condition.RawRow {
	r := g.base(fmt.Sprintf("Synthetic %d (Simple RT %d)", 1960+i, i))
	if g.rng.Intn(3) == 0 {
		r["RSI"] = "Not Specified"
	}
	return r
}
