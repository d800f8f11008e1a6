// Package normalize converts raw uploaded string data into typed numeric and
// temporal values. The rules are heuristics tuned to the operator's exports,
// not a general locale parser.
package normalize

import (
	"strconv"
	"strings"

	"github.com/a20121248/network-dashboard/internal/dataset"
)

// CleanNumber rewrites a raw numeric string into canonical form. The comma
// disambiguation policy, applied in order:
//
//  1. no digit at all -> missing (empty string)
//  2. both comma and period -> comma is a thousands separator, strip it
//  3. only comma, two groups, fractional group 1-3 digits -> comma is decimal
//  4. only comma otherwise -> comma is a thousands separator, strip it
//  5. anything else passes through unchanged
//
// Already-clean input comes back unchanged, so the pass is idempotent.
func CleanNumber(raw string) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	if s == "" || strings.EqualFold(s, "nan") {
		return ""
	}
	if !strings.ContainsAny(s, "0123456789") {
		return ""
	}

	hasComma := strings.Contains(s, ",")
	hasPeriod := strings.Contains(s, ".")
	switch {
	case hasComma && hasPeriod:
		return strings.ReplaceAll(s, ",", "")
	case hasComma:
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) >= 1 && len(parts[1]) <= 3 {
			return strings.ReplaceAll(s, ",", ".")
		}
		return strings.ReplaceAll(s, ",", "")
	default:
		return s
	}
}

// ParseNumber cleans a raw string and parses it as a float. The second
// return is false for missing or unparseable values.
func ParseNumber(raw string) (float64, bool) {
	cleaned := CleanNumber(raw)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CleanNumericColumns rewrites the named columns of a frame in place to
// canonical numeric text. Cells that fail to parse become empty, never an
// error: a column that cannot be cleaned degrades to missing values and the
// rest of the dataset is untouched.
func CleanNumericColumns(f *dataset.Frame, columns []string) {
	for _, name := range columns {
		idx := f.ColumnIndex(name)
		if idx == -1 {
			continue
		}
		values := make([]string, len(f.Rows))
		for i := range f.Rows {
			cleaned := CleanNumber(f.Cell(i, idx))
			if cleaned == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
				continue
			}
			values[i] = cleaned
		}
		f.SetColumn(name, values)
	}
}

// NumericValues returns the parseable values of a column along with a
// per-row validity mask.
func NumericValues(f *dataset.Frame, column string) ([]float64, []bool) {
	idx := f.ColumnIndex(column)
	if idx == -1 {
		return nil, nil
	}
	values := make([]float64, len(f.Rows))
	valid := make([]bool, len(f.Rows))
	for i := range f.Rows {
		values[i], valid[i] = ParseNumber(f.Cell(i, idx))
	}
	return values, valid
}
