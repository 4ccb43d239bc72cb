// Package cleaning turns raw spreadsheet text into typed condition values.
// Cleaners never fail: unparseable input degrades to missing (or 0 for
// percentages) and the caller decides whether that matters.
package cleaning

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"designspace/domain/condition"
)

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// isNA recognizes the spellings of the inapplicable marker.
func isNA(s string) bool {
	switch strings.ToLower(s) {
	case "n/a", "na":
		return true
	}
	return false
}

// isUnspecified recognizes a data-entry gap.
func isUnspecified(s string) bool {
	return s == "" || strings.EqualFold(s, "not specified") || strings.EqualFold(s, "nan")
}

// parseFloat parses a plain number, tolerating surrounding whitespace and a
// decimal comma.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// CleanNumeric parses a plain number, the N/A marker, or yields missing.
func CleanNumeric(raw string) condition.Value {
	s := strings.TrimSpace(raw)
	if isNA(s) {
		return condition.NotApplicable()
	}
	if f, ok := parseFloat(s); ok {
		return condition.Number(f)
	}
	return condition.Missing()
}

// CleanDurationLike parses interval columns such as RSI. Besides plain
// numbers it understands "Varied (choice: a, b, c)", cleaned to the mean of
// the listed numbers, and "Varied (Uniform: a-b)", cleaned to the midpoint
// when exactly two bounds are present.
func CleanDurationLike(raw string) condition.Value {
	s := strings.TrimSpace(raw)
	if isUnspecified(s) {
		return condition.Missing()
	}
	if isNA(s) {
		return condition.NotApplicable()
	}
	if f, ok := parseFloat(s); ok {
		return condition.Number(f)
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "varied (choice:"):
		nums := numbersIn(s)
		if len(nums) == 0 {
			return condition.Missing()
		}
		return condition.Number(mean(nums))
	case strings.Contains(lower, "varied (uniform:"):
		// "a-b" must not read b as negative
		nums := numbersIn(strings.ReplaceAll(s, "-", " "))
		if len(nums) != 2 {
			return condition.Missing()
		}
		return condition.Number(mean(nums))
	}
	return condition.Missing()
}

// CleanPercentage strips a percent sign and parses the rest. Missing or
// unparseable input yields 0.
func CleanPercentage(raw string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	if f, ok := parseFloat(s); ok {
		return f
	}
	return 0
}

// CleanYesNo maps yes to 1 and no to 0.
func CleanYesNo(raw string) condition.Value {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "yes", "y", "true":
		return condition.Number(1)
	case "no", "n", "false":
		return condition.Number(0)
	}
	if isNA(s) {
		return condition.NotApplicable()
	}
	return condition.Missing()
}

func numbersIn(s string) []float64 {
	matches := numberPattern.FindAllString(s, -1)
	nums := make([]float64, 0, len(matches))
	for _, m := range matches {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			nums = append(nums, f)
		}
	}
	return nums
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
