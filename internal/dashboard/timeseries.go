package dashboard

import (
	"sort"
	"time"

	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/models"
	"github.com/a20121248/network-dashboard/internal/normalize"
)

// MetricDef names a KPI column and its display label.
type MetricDef struct {
	Column string `json:"column"`
	Label  string `json:"label"`
}

// SeriesPoint is one sample of a timeline series.
type SeriesPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// Series is one timeline trace: a metric, optionally split per site.
type Series struct {
	Metric string        `json:"metric"`
	Label  string        `json:"label"`
	Site   string        `json:"site,omitempty"`
	Points []SeriesPoint `json:"points"`
}

// HourlyAverage is a metric's mean value per hour of day.
type HourlyAverage struct {
	Metric string      `json:"metric"`
	Label  string      `json:"label"`
	Hours  []HourValue `json:"hours"`
}

// HourValue is the mean of a metric over one hour of day.
type HourValue struct {
	Hour  int     `json:"hour"`
	Value float64 `json:"value"`
}

// MetricStats is one row of the summary statistics table.
type MetricStats struct {
	Metric string  `json:"metric"`
	Label  string  `json:"label"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// availableMetrics keeps the defs whose column exists in the frame.
func availableMetrics(f *dataset.Frame, defs []MetricDef) []MetricDef {
	out := []MetricDef{}
	for _, d := range defs {
		if f.HasColumn(d.Column) {
			out = append(out, d)
		}
	}
	return out
}

// selectMetrics resolves a requested metric list against the available defs.
// An empty request selects everything.
func selectMetrics(available []MetricDef, requested []string) []MetricDef {
	if len(requested) == 0 {
		return available
	}
	byColumn := make(map[string]MetricDef, len(available))
	for _, d := range available {
		byColumn[d.Column] = d
	}
	out := []MetricDef{}
	for _, col := range requested {
		if d, ok := byColumn[col]; ok {
			out = append(out, d)
		}
	}
	return out
}

// applyDateRange narrows a frame by the start_time date window. Quick ranges
// are anchored to the newest date in the data. Without parsed dates, or with
// an "all" selection, the frame passes through.
func applyDateRange(f *dataset.Frame, dr models.DateRange, dateOK bool) *dataset.Frame {
	if !dateOK {
		return f
	}
	if dr.Quick == "" && dr.Start == "" && dr.End == "" {
		return f
	}
	if dr.Quick == "all" {
		return f
	}

	times, valid := normalize.Timestamps(f, "start_time")
	if times == nil {
		return f
	}
	var minDate, maxDate time.Time
	seen := false
	for i, ok := range valid {
		if !ok {
			continue
		}
		d := times[i].Truncate(24 * time.Hour)
		if !seen || d.Before(minDate) {
			minDate = d
		}
		if !seen || d.After(maxDate) {
			maxDate = d
		}
		seen = true
	}
	if !seen {
		return f
	}

	start, end := minDate, maxDate
	switch dr.Quick {
	case "last_day":
		start = maxDate
	case "last_3_days":
		start = maxDate.AddDate(0, 0, -2)
	case "last_week":
		start = maxDate.AddDate(0, 0, -6)
	default: // custom bounds
		if t, err := time.Parse("2006-01-02", dr.Start); err == nil {
			start = t
		}
		if t, err := time.Parse("2006-01-02", dr.End); err == nil {
			end = t
		}
	}
	if end.Before(start) {
		return f.Filter(func(int) bool { return false })
	}

	return f.Filter(func(row int) bool {
		if !valid[row] {
			return false
		}
		d := times[row].Truncate(24 * time.Hour)
		return !d.Before(start) && !d.After(end)
	})
}

// dateRangeDays is the span of the start_time column in whole days.
func dateRangeDays(f *dataset.Frame) *int {
	times, valid := normalize.Timestamps(f, "start_time")
	var minT, maxT time.Time
	seen := false
	for i, ok := range valid {
		if !ok {
			continue
		}
		if !seen || times[i].Before(minT) {
			minT = times[i]
		}
		if !seen || times[i].After(maxT) {
			maxT = times[i]
		}
		seen = true
	}
	if !seen {
		return nil
	}
	return intPtr(int(maxT.Sub(minT).Hours() / 24))
}

// buildSeries emits one timeline trace per metric, split per site when a site
// filter is active. Normalization rescales each trace to 0-100 so metrics
// with different magnitudes can share an axis.
func buildSeries(f *dataset.Frame, siteCol string, sites []string, metrics []MetricDef, normalizeScale bool) []Series {
	times, timeOK := normalize.Timestamps(f, "start_time")
	if times == nil {
		return nil
	}

	groups := [][]int{}
	groupSites := []string{}
	if siteCol != "" && len(sites) > 0 {
		siteIdx := f.ColumnIndex(siteCol)
		for _, site := range sites {
			rows := []int{}
			for i := range f.Rows {
				if f.Cell(i, siteIdx) == site {
					rows = append(rows, i)
				}
			}
			groups = append(groups, rows)
			groupSites = append(groupSites, site)
		}
	} else {
		all := make([]int, len(f.Rows))
		for i := range all {
			all[i] = i
		}
		groups = append(groups, all)
		groupSites = append(groupSites, "")
	}

	out := []Series{}
	for _, m := range metrics {
		values, valueOK := normalize.NumericValues(f, m.Column)
		if values == nil {
			continue
		}
		for g, rows := range groups {
			points := []SeriesPoint{}
			for _, row := range rows {
				if !timeOK[row] || !valueOK[row] {
					continue
				}
				points = append(points, SeriesPoint{
					Time:  times[row].Format(normalize.CanonicalTimeLayout),
					Value: values[row],
				})
			}
			if len(points) == 0 {
				continue
			}
			sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })
			if normalizeScale {
				rescale(points)
			}
			out = append(out, Series{Metric: m.Column, Label: m.Label, Site: groupSites[g], Points: points})
		}
	}
	return out
}

// rescale maps point values onto 0-100. A flat trace collapses to zero.
func rescale(points []SeriesPoint) {
	lo, hi := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		if p.Value < lo {
			lo = p.Value
		}
		if p.Value > hi {
			hi = p.Value
		}
	}
	for i := range points {
		if hi == lo {
			points[i].Value = 0
			continue
		}
		points[i].Value = (points[i].Value - lo) / (hi - lo) * 100
	}
}

// hourlyAverages computes each metric's mean per hour-of-day from the derived
// hour column.
func hourlyAverages(f *dataset.Frame, metrics []MetricDef) []HourlyAverage {
	hourIdx := f.ColumnIndex("hour")
	if hourIdx == -1 {
		return nil
	}
	out := []HourlyAverage{}
	for _, m := range metrics {
		values, valid := normalize.NumericValues(f, m.Column)
		if values == nil {
			continue
		}
		byHour := map[int][]float64{}
		for i := range f.Rows {
			if !valid[i] {
				continue
			}
			hour, ok := parseHour(f.Cell(i, hourIdx))
			if !ok {
				continue
			}
			byHour[hour] = append(byHour[hour], values[i])
		}
		if len(byHour) == 0 {
			continue
		}
		hours := make([]int, 0, len(byHour))
		for h := range byHour {
			hours = append(hours, h)
		}
		sort.Ints(hours)
		avg := HourlyAverage{Metric: m.Column, Label: m.Label}
		for _, h := range hours {
			avg.Hours = append(avg.Hours, HourValue{Hour: h, Value: mean(byHour[h])})
		}
		out = append(out, avg)
	}
	return out
}

func parseHour(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	hour := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		hour = hour*10 + int(c-'0')
	}
	if hour > 23 {
		return 0, false
	}
	return hour, true
}

// siteComparison computes the mean of one metric per site, descending.
func siteComparison(f *dataset.Frame, siteCol string, metric MetricDef) []RankedSite {
	if siteCol == "" {
		return nil
	}
	siteIdx := f.ColumnIndex(siteCol)
	values, valid := normalize.NumericValues(f, metric.Column)
	if values == nil {
		return nil
	}
	bySite := map[string][]float64{}
	for i := range f.Rows {
		if !valid[i] {
			continue
		}
		site := f.Cell(i, siteIdx)
		if site == "" {
			continue
		}
		bySite[site] = append(bySite[site], values[i])
	}
	return rankTop(bySite, 1, len(bySite))
}

// metricStats builds the summary statistics table over non-missing values.
func metricStats(f *dataset.Frame, metrics []MetricDef) []MetricStats {
	out := []MetricStats{}
	for _, m := range metrics {
		values, valid := normalize.NumericValues(f, m.Column)
		if values == nil {
			continue
		}
		present := []float64{}
		for i, ok := range valid {
			if ok {
				present = append(present, values[i])
			}
		}
		if len(present) == 0 {
			continue
		}
		out = append(out, MetricStats{
			Metric: m.Column,
			Label:  m.Label,
			Mean:   mean(present),
			Min:    minOf(present),
			Max:    maxOf(present),
			StdDev: stddev(present),
			Count:  len(present),
		})
	}
	return out
}
