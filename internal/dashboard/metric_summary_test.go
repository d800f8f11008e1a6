package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/models"
)

func rawPerformance() *dataset.Frame {
	return &dataset.Frame{
		Headers: []string{"start_time", "Site_Name", "latency", "dl_data_traffic_mb"},
		Rows: [][]string{
			{"Aug 18, 2025 @ 06:00:00.000", "S1", "10,5", "1,024.5"},
			{"Aug 18, 2025 @ 07:00:00.000", "S1", "12,5", "2,048.5"},
			{"Aug 19, 2025 @ 06:00:00.000", "S2", "20,0", "512.25"},
			{"Aug 20, 2025 @ 06:00:00.000", "S2", "", "128"},
		},
		Category: dataset.Performance,
	}
}

func TestBuildPerformanceSummary(t *testing.T) {
	summary := BuildPerformanceSummary(rawPerformance(), models.FilterRequest{})

	require.True(t, summary.Loaded)
	assert.True(t, summary.DateParsed)
	assert.Equal(t, 4, summary.TotalRecords)
	require.NotNil(t, summary.UniqueSites)
	assert.Equal(t, 2, *summary.UniqueSites)
	require.NotNil(t, summary.DateRangeDays)
	assert.Equal(t, 2, *summary.DateRangeDays)

	// Only the two metric columns present in the frame are available.
	require.Len(t, summary.AvailableMetrics, 2)
	assert.Equal(t, "dl_data_traffic_mb", summary.AvailableMetrics[0].Column)
	assert.Equal(t, "latency", summary.AvailableMetrics[1].Column)

	// Empty filters select everything.
	assert.Equal(t, 4, summary.FilteredRecords)
	assert.False(t, summary.Empty)
	require.NotEmpty(t, summary.Series)
	require.NotEmpty(t, summary.Stats)
}

func TestMetricSummaryStats(t *testing.T) {
	summary := BuildPerformanceSummary(rawPerformance(), models.FilterRequest{
		Metrics: []string{"latency"},
	})

	require.Len(t, summary.Stats, 1)
	s := summary.Stats[0]
	assert.Equal(t, "latency", s.Metric)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, (10.5+12.5+20.0)/3, s.Mean, 1e-9)
	assert.InDelta(t, 10.5, s.Min, 1e-9)
	assert.InDelta(t, 20.0, s.Max, 1e-9)
}

func TestMetricSummarySiteFilter(t *testing.T) {
	summary := BuildPerformanceSummary(rawPerformance(), models.FilterRequest{
		Sites:   []string{"S1"},
		Metrics: []string{"latency"},
	})

	assert.Equal(t, 2, summary.FilteredRecords)
	require.Len(t, summary.Series, 1)
	assert.Equal(t, "S1", summary.Series[0].Site)
	require.Len(t, summary.Series[0].Points, 2)
	assert.Equal(t, "2025-08-18 06:00:00", summary.Series[0].Points[0].Time)
	assert.InDelta(t, 10.5, summary.Series[0].Points[0].Value, 1e-9)
}

func TestMetricSummaryNormalization(t *testing.T) {
	summary := BuildPerformanceSummary(rawPerformance(), models.FilterRequest{
		Sites:     []string{"S1"},
		Metrics:   []string{"latency"},
		Normalize: true,
	})

	require.Len(t, summary.Series, 1)
	points := summary.Series[0].Points
	require.Len(t, points, 2)
	assert.InDelta(t, 0, points[0].Value, 1e-9)
	assert.InDelta(t, 100, points[1].Value, 1e-9)
}

func TestMetricSummaryDateRange(t *testing.T) {
	summary := BuildPerformanceSummary(rawPerformance(), models.FilterRequest{
		DateRange: models.DateRange{Quick: "last_day"},
	})
	// Newest date is Aug 20; only its single row survives.
	assert.Equal(t, 1, summary.FilteredRecords)

	summary = BuildPerformanceSummary(rawPerformance(), models.FilterRequest{
		DateRange: models.DateRange{Quick: "last_3_days"},
	})
	assert.Equal(t, 4, summary.FilteredRecords)

	summary = BuildPerformanceSummary(rawPerformance(), models.FilterRequest{
		DateRange: models.DateRange{Start: "2025-08-19", End: "2025-08-19"},
	})
	assert.Equal(t, 1, summary.FilteredRecords)
}

func TestMetricSummaryEmptyResult(t *testing.T) {
	summary := BuildPerformanceSummary(rawPerformance(), models.FilterRequest{
		Sites: []string{"NO_SUCH_SITE"},
	})
	assert.True(t, summary.Empty)
	assert.Zero(t, summary.FilteredRecords)
	assert.Empty(t, summary.Series)
}

func TestMetricSummaryComparison(t *testing.T) {
	summary := BuildPerformanceSummary(rawPerformance(), models.FilterRequest{
		Metrics: []string{"latency"},
		Metric:  "latency",
	})

	require.Len(t, summary.Comparison, 2)
	// S2 has the higher mean latency.
	assert.Equal(t, "S2", summary.Comparison[0].Site)
	assert.InDelta(t, 20.0, summary.Comparison[0].Value, 1e-9)
	assert.Equal(t, "S1", summary.Comparison[1].Site)
}

func TestMetricSummaryHourlyAverages(t *testing.T) {
	summary := BuildPerformanceSummary(rawPerformance(), models.FilterRequest{
		Metrics: []string{"latency"},
	})

	require.Len(t, summary.HourlyAverages, 1)
	hours := summary.HourlyAverages[0].Hours
	require.Len(t, hours, 2)
	assert.Equal(t, 6, hours[0].Hour)
	// Hour 6 has latencies 10.5 and 20.0 across the two days.
	assert.InDelta(t, 15.25, hours[0].Value, 1e-9)
	assert.Equal(t, 7, hours[1].Hour)
}

func TestBuildQualitySummary(t *testing.T) {
	f := &dataset.Frame{
		Headers: []string{"start_time", "site", "lte_cdr"},
		Rows: [][]string{
			{"Aug 18, 2025 @ 06:00:00.000", "S1", "0,5"},
			{"Aug 18, 2025 @ 07:00:00.000", "S1", "1,5"},
		},
		Category: dataset.Quality,
	}
	summary := BuildQualitySummary(f, models.FilterRequest{})

	require.True(t, summary.Loaded)
	require.Len(t, summary.AvailableMetrics, 1)
	assert.Equal(t, "lte_cdr", summary.AvailableMetrics[0].Column)
	require.Len(t, summary.Stats, 1)
	assert.InDelta(t, 1.0, summary.Stats[0].Mean, 1e-9)
}

func TestMetricSummaryNotLoaded(t *testing.T) {
	summary := BuildPerformanceSummary(nil, models.FilterRequest{})
	assert.False(t, summary.Loaded)
}

func TestMetricExportFrame(t *testing.T) {
	filtered := PerformanceExportFrame(rawPerformance(), models.FilterRequest{Sites: []string{"S2"}})
	require.NotNil(t, filtered)
	assert.Len(t, filtered.Rows, 2)
	// Cells are canonicalized by the cleaning pass.
	assert.Equal(t, "20.0", filtered.Cell(0, filtered.ColumnIndex("latency")))
}
