package dashboard

import (
	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/models"
	"github.com/a20121248/network-dashboard/internal/normalize"
)

// MetricSummary is the shared response shape of the performance and quality
// modules: both are KPI timeline dashboards differing only in metric list.
type MetricSummary struct {
	Loaded bool `json:"loaded"`
	Empty  bool `json:"empty"`

	TotalRecords     int         `json:"total_records"`
	UniqueSites      *int        `json:"unique_sites,omitempty"`
	DateRangeDays    *int        `json:"date_range_days,omitempty"`
	AvailableMetrics []MetricDef `json:"available_metrics"`
	DateParsed       bool        `json:"date_parsed"`

	FilteredRecords int  `json:"filtered_records"`
	FilteredSites   *int `json:"filtered_sites,omitempty"`

	Series         []Series            `json:"series,omitempty"`
	HourlyAverages []HourlyAverage     `json:"hourly_averages,omitempty"`
	Comparison     []RankedSite        `json:"comparison,omitempty"`
	Stats          []MetricStats       `json:"stats,omitempty"`
	Table          []map[string]string `json:"table,omitempty"`
}

const tablePreviewRows = 100

// prepareMetricFrame clones, cleans the KPI columns, and parses timestamps.
func prepareMetricFrame(f *dataset.Frame, defs []MetricDef) (*dataset.Frame, bool) {
	clean := f.Clone()
	columns := make([]string, len(defs))
	for i, d := range defs {
		columns[i] = d.Column
	}
	normalize.CleanNumericColumns(clean, columns)
	dateOK := normalize.ParseDateTimeColumn(clean, "start_time", normalize.UploadTimeLayout, true)
	normalize.ParseDateTimeColumn(clean, "end_time", normalize.UploadTimeLayout, false)
	return clean, dateOK
}

// buildMetricSummary runs the common filter-then-summarize pipeline.
func buildMetricSummary(f *dataset.Frame, defs []MetricDef, req models.FilterRequest) *MetricSummary {
	if f == nil {
		return &MetricSummary{}
	}
	clean, dateOK := prepareMetricFrame(f, defs)
	available := availableMetrics(clean, defs)

	summary := &MetricSummary{
		Loaded:           true,
		TotalRecords:     len(clean.Rows),
		AvailableMetrics: available,
		DateParsed:       dateOK,
	}
	siteCol := clean.FindSiteColumn()
	if siteCol != "" {
		summary.UniqueSites = intPtr(clean.DistinctCount(siteCol))
	}
	if dateOK {
		summary.DateRangeDays = dateRangeDays(clean)
	}

	filtered := clean
	if siteCol != "" {
		filtered = filtered.FilterByValues(siteCol, req.Sites)
	}
	filtered = applyDateRange(filtered, req.DateRange, dateOK)

	summary.FilteredRecords = len(filtered.Rows)
	if siteCol != "" {
		summary.FilteredSites = intPtr(filtered.DistinctCount(siteCol))
	}
	if len(filtered.Rows) == 0 {
		summary.Empty = true
		return summary
	}

	selected := selectMetrics(available, req.Metrics)
	if dateOK {
		summary.Series = buildSeries(filtered, siteCol, req.Sites, selected, req.Normalize)
		summary.HourlyAverages = hourlyAverages(filtered, selected)
	}
	if comparison := comparisonMetric(selected, req.Metric); comparison != nil {
		summary.Comparison = siteComparison(filtered, siteCol, *comparison)
	}
	summary.Stats = metricStats(filtered, selected)
	summary.Table = metricTable(filtered, siteCol, selected)
	return summary
}

// comparisonMetric picks the metric for the cross-site chart: the requested
// one when selected, the first selected metric otherwise.
func comparisonMetric(selected []MetricDef, requested string) *MetricDef {
	if len(selected) == 0 {
		return nil
	}
	for i := range selected {
		if selected[i].Column == requested {
			return &selected[i]
		}
	}
	return &selected[0]
}

// metricTable previews the essential columns: timestamps, site, and the
// selected metrics.
func metricTable(f *dataset.Frame, siteCol string, selected []MetricDef) []map[string]string {
	columns := []string{"start_time", "end_time"}
	if siteCol != "" {
		columns = append(columns, siteCol)
	}
	for _, m := range selected {
		columns = append(columns, m.Column)
	}
	return f.SelectColumns(columns).Head(tablePreviewRows)
}

// metricExportFrame applies the same filters as the summary and returns the
// full-width frame for download.
func metricExportFrame(f *dataset.Frame, defs []MetricDef, req models.FilterRequest) *dataset.Frame {
	if f == nil {
		return nil
	}
	clean, dateOK := prepareMetricFrame(f, defs)
	filtered := clean
	if siteCol := clean.FindSiteColumn(); siteCol != "" {
		filtered = filtered.FilterByValues(siteCol, req.Sites)
	}
	return applyDateRange(filtered, req.DateRange, dateOK)
}
