// Package price parses loosely formatted numeric text from marketplace pages.
package price

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numberRe = regexp.MustCompile(`\d+[,.]?\d*`)

// ParseNumber extracts the first numeric token from text and parses it as a
// float. Thousands separators (commas) are stripped before matching, so
// "EGP 12,499.00" parses as 12499. Returns false when the text contains no
// parseable number. It never panics and never returns NaN or a negative
// value produced by a parse artifact.
func ParseNumber(text string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	m := numberRe.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
