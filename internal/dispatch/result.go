package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseResult parses the underscore-delimited "loadN_loadP_loadS_..."
// string a worker writes to executed_results[UUID] (spec.md §4.4/§6).
func ParseResult(s string) ([]float64, error) {
	parts := strings.Split(s, "_")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("dispatch: parsing executed_results field %d (%q): %w", i, p, err)
		}
		out[i] = v
	}
	return out, nil
}

// FormatResult is the inverse of ParseResult, used by tests and by
// any in-process simulator stand-in.
func FormatResult(loads []float64) string {
	parts := make([]string, len(loads))
	for i, v := range loads {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, "_")
}
