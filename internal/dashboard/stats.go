// Package dashboard builds the JSON chart and table summaries served per
// dataset category. Builders tolerate missing datasets and missing columns,
// degrading to partial summaries instead of failing.
package dashboard

import (
	"math"
	"sort"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// stddev is the sample standard deviation, matching what the stats tables
// historically displayed. Zero for fewer than two values.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// CountByLabel is one bar of a histogram.
type CountByLabel struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RankedSite is one bar of a per-site ranking chart.
type RankedSite struct {
	Site  string  `json:"site"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// rankTop aggregates per-site values, keeps sites with at least minCount
// samples, and returns the top n by mean value. Ties break by site name so
// output is stable.
func rankTop(bySite map[string][]float64, minCount, n int) []RankedSite {
	ranked := make([]RankedSite, 0, len(bySite))
	for site, values := range bySite {
		if len(values) < minCount {
			continue
		}
		ranked = append(ranked, RankedSite{Site: site, Value: mean(values), Count: len(values)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Site < ranked[j].Site
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// topCounts returns the n most frequent values of a counter, descending,
// ties broken by name.
func topCounts(counter map[string]int, n int) []CountByLabel {
	out := make([]CountByLabel, 0, len(counter))
	for label, count := range counter {
		out = append(out, CountByLabel{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
