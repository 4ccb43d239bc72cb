package testkit

import "designspace/domain/condition"

// FixtureHeaders is the column order of the canonical fixture.
var FixtureHeaders = []string{
	"Experiment",
	"Task 2 Response Probability",
	"Inter-task SOA",
	"Distractor SOA",
	"Task 1 CSI",
	"Task 2 CSI",
	"Switch Rate",
	"Trial Transition Type",
	"Stimulus-Stimulus Congruency",
	"Stimulus-Response Congruency",
	"Response Set Overlap",
	"Task 1 Stimulus-Response Mapping",
	"Task 2 Stimulus-Response Mapping",
	"Task 1 Cue Type",
	"Task 2 Cue Type",
	"RSI is Predictable",
	"RSI",
	"Task 1 Difficulty",
	"Task 2 Difficulty",
}

// Fixture returns the three canonical conditions: a Stroop interference
// condition, a short-SOA PRP condition and an incompatible task-switching
// condition. Every call returns a fresh copy.
func Fixture() condition.RawTable {
	return condition.RawTable{
		Headers: append([]string(nil), FixtureHeaders...),
		Rows: []condition.RawRow{
			{
				"Experiment":                       "Stroop_Incongruent",
				"Task 2 Response Probability":      "0.0",
				"Inter-task SOA":                   "N/A",
				"Distractor SOA":                   "0",
				"Task 1 CSI":                       "0",
				"Task 2 CSI":                       "N/A",
				"Switch Rate":                      "0%",
				"Trial Transition Type":            "Pure",
				"Stimulus-Stimulus Congruency":     "Incongruent",
				"Stimulus-Response Congruency":     "N/A",
				"Response Set Overlap":             "N/A",
				"Task 1 Stimulus-Response Mapping": "Compatible",
				"Task 2 Stimulus-Response Mapping": "N/A",
				"Task 1 Cue Type":                  "None/Implicit",
				"Task 2 Cue Type":                  "N/A",
				"RSI is Predictable":               "Yes",
				"RSI":                              "1000",
				"Task 1 Difficulty":                "3",
				"Task 2 Difficulty":                "N/A",
			},
			{
				"Experiment":                       "PRP_Short_SOA",
				"Task 2 Response Probability":      "1.0",
				"Inter-task SOA":                   "100",
				"Distractor SOA":                   "N/A",
				"Task 1 CSI":                       "0",
				"Task 2 CSI":                       "0",
				"Switch Rate":                      "0%",
				"Trial Transition Type":            "Pure",
				"Stimulus-Stimulus Congruency":     "N/A",
				"Stimulus-Response Congruency":     "N/A",
				"Response Set Overlap":             "Disjoint - Modality",
				"Task 1 Stimulus-Response Mapping": "Compatible",
				"Task 2 Stimulus-Response Mapping": "Compatible",
				"Task 1 Cue Type":                  "None/Implicit",
				"Task 2 Cue Type":                  "None/Implicit",
				"RSI is Predictable":               "Yes",
				"RSI":                              "1500",
				"Task 1 Difficulty":                "2",
				"Task 2 Difficulty":                "2",
			},
			{
				"Experiment":                       "TS_Switch_Incompatible",
				"Task 2 Response Probability":      "0.0",
				"Inter-task SOA":                   "N/A",
				"Distractor SOA":                   "0",
				"Task 1 CSI":                       "200",
				"Task 2 CSI":                       "200",
				"Switch Rate":                      "50%",
				"Trial Transition Type":            "Switch",
				"Stimulus-Stimulus Congruency":     "Neutral",
				"Stimulus-Response Congruency":     "Incongruent",
				"Response Set Overlap":             "Identical",
				"Task 1 Stimulus-Response Mapping": "Incompatible",
				"Task 2 Stimulus-Response Mapping": "Arbitrary",
				"Task 1 Cue Type":                  "Arbitrary",
				"Task 2 Cue Type":                  "Arbitrary",
				"RSI is Predictable":               "No",
				"RSI":                              "1100",
				"Task 1 Difficulty":                "3",
				"Task 2 Difficulty":                "3",
			},
		},
	}
}
