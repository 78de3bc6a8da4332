package processing

import (
	"math"

	"reviewflow/internal/metadata"
)

// invalidScore replaces blank or malformed score input. It fails every maximum
// value check, including a configured maximum below zero.
var invalidScore = math.Inf(1)

// ParseScore parses reviewer input, returning +Inf when the text is not a
// finite decimal number.
func ParseScore(raw string) float64 {
	value, ok := metadata.ParseDecimal(raw)
	if !ok {
		return invalidScore
	}
	return value
}

// MeanScore returns the arithmetic mean of the values that parse as decimals.
// Malformed values are skipped; with no valid values the mean is 0.
func MeanScore(values []string) float64 {
	var (
		total float64
		valid int
	)
	for _, raw := range values {
		value, ok := metadata.ParseDecimal(raw)
		if !ok {
			continue
		}
		total += value
		valid++
	}
	if valid == 0 {
		return 0
	}
	return total / float64(valid)
}

// Passes reports whether mean meets the inclusive acceptance threshold.
func Passes(mean, threshold float64) bool {
	return mean >= threshold
}
