package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/models"
)

func rawAvailability() *dataset.Frame {
	return &dataset.Frame{
		Headers: []string{"start_time", "Site_Name", "cell_serv_time"},
		Rows: [][]string{
			{"Aug 18, 2025 @ 06:00:00.000", "S1", "86400"}, // full day
			{"Aug 18, 2025 @ 07:00:00.000", "S1", "43200"}, // half day
			{"Aug 18, 2025 @ 06:00:00.000", "S2", "86400"},
		},
		Category: dataset.Availability,
	}
}

func TestBuildAvailabilitySummary(t *testing.T) {
	summary := BuildAvailabilitySummary(rawAvailability(), models.FilterRequest{})

	require.True(t, summary.Loaded)
	assert.True(t, summary.DateParsed)
	assert.Equal(t, 3, summary.TotalRecords)
	require.NotNil(t, summary.UniqueSites)
	assert.Equal(t, 2, *summary.UniqueSites)
	require.NotNil(t, summary.AvgServiceHours)
	assert.InDelta(t, 20.0, *summary.AvgServiceHours, 1e-9) // (24+12+24)/3
}

func TestAvailabilityStats(t *testing.T) {
	summary := BuildAvailabilitySummary(rawAvailability(), models.FilterRequest{
		Sites: []string{"S1"},
	})

	assert.Equal(t, 2, summary.FilteredRecords)
	require.NotNil(t, summary.Stats)
	assert.InDelta(t, 18.0, summary.Stats.MeanHours, 1e-9)
	assert.InDelta(t, 12.0, summary.Stats.MinHours, 1e-9)
	assert.InDelta(t, 24.0, summary.Stats.MaxHours, 1e-9)
	assert.InDelta(t, 75.0, summary.Stats.AvailabilityPct, 1e-9)
}

func TestAvailabilitySeriesAsHours(t *testing.T) {
	summary := BuildAvailabilitySummary(rawAvailability(), models.FilterRequest{
		Sites:   []string{"S1"},
		AsHours: true,
	})

	require.Len(t, summary.Series, 1)
	require.Len(t, summary.Series[0].Points, 2)
	assert.InDelta(t, 24.0, summary.Series[0].Points[0].Value, 1e-9)
	assert.InDelta(t, 12.0, summary.Series[0].Points[1].Value, 1e-9)

	require.Len(t, summary.HourlyAverages, 1)
	assert.InDelta(t, 24.0, summary.HourlyAverages[0].Hours[0].Value, 1e-9)
}

func TestAvailabilityEmptySelection(t *testing.T) {
	summary := BuildAvailabilitySummary(rawAvailability(), models.FilterRequest{
		Sites: []string{"NOPE"},
	})
	assert.True(t, summary.Empty)
}

func TestAvailabilityNotLoaded(t *testing.T) {
	assert.False(t, BuildAvailabilitySummary(nil, models.FilterRequest{}).Loaded)
}

func TestAvailabilityExportFrame(t *testing.T) {
	filtered := AvailabilityExportFrame(rawAvailability(), models.FilterRequest{Sites: []string{"S2"}})
	require.NotNil(t, filtered)
	assert.Len(t, filtered.Rows, 1)
}
