package dashboard

import (
	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/models"
	"github.com/a20121248/network-dashboard/internal/normalize"
)

// serviceTimeColumn holds seconds of cell service per sample; a full day of
// service is 86400.
const serviceTimeColumn = "cell_serv_time"

var availabilityMetric = []MetricDef{{Column: serviceTimeColumn, Label: "Service Time"}}

// AvailabilityStats summarizes service time in hours. AvailabilityPct treats
// a 24h mean as 100%.
type AvailabilityStats struct {
	MeanHours       float64 `json:"mean_hours"`
	MinHours        float64 `json:"min_hours"`
	MaxHours        float64 `json:"max_hours"`
	AvailabilityPct float64 `json:"availability_pct"`
}

// AvailabilitySummary is the availability module response.
type AvailabilitySummary struct {
	Loaded bool `json:"loaded"`
	Empty  bool `json:"empty"`

	TotalRecords    int  `json:"total_records"`
	UniqueSites     *int `json:"unique_sites,omitempty"`
	DateRangeDays   *int `json:"date_range_days,omitempty"`
	DateParsed      bool `json:"date_parsed"`
	FilteredRecords int  `json:"filtered_records"`
	SelectedSites   int  `json:"selected_sites"`

	AvgServiceHours *float64           `json:"avg_service_hours,omitempty"`
	Series          []Series           `json:"series,omitempty"`
	HourlyAverages  []HourlyAverage    `json:"hourly_averages,omitempty"`
	Stats           *AvailabilityStats `json:"stats,omitempty"`

	Table []map[string]string `json:"table,omitempty"`
}

// BuildAvailabilitySummary summarizes cell service time per site. AsHours in
// the request converts the timeline from seconds to hours.
func BuildAvailabilitySummary(f *dataset.Frame, req models.FilterRequest) *AvailabilitySummary {
	if f == nil {
		return &AvailabilitySummary{}
	}
	clean := f.Clone()
	normalize.CleanNumericColumns(clean, []string{serviceTimeColumn})
	dateOK := normalize.ParseDateTimeColumn(clean, "start_time", normalize.UploadTimeLayout, true)

	summary := &AvailabilitySummary{
		Loaded:       true,
		TotalRecords: len(clean.Rows),
		DateParsed:   dateOK,
	}
	siteCol := clean.FindSiteColumn()
	if siteCol != "" {
		summary.UniqueSites = intPtr(clean.DistinctCount(siteCol))
	}
	if dateOK {
		summary.DateRangeDays = dateRangeDays(clean)
	}
	if hours := serviceHours(clean); hours != nil {
		summary.AvgServiceHours = floatPtr(mean(hours))
	}

	filtered := clean
	if siteCol != "" {
		filtered = filtered.FilterByValues(siteCol, req.Sites)
	}
	summary.FilteredRecords = len(filtered.Rows)
	summary.SelectedSites = len(req.Sites)
	if len(filtered.Rows) == 0 {
		summary.Empty = true
		return summary
	}

	if dateOK {
		summary.Series = buildSeries(filtered, siteCol, req.Sites, availabilityMetric, false)
		if req.AsHours {
			for s := range summary.Series {
				for p := range summary.Series[s].Points {
					summary.Series[s].Points[p].Value /= 3600
				}
			}
		}
		summary.HourlyAverages = hourlyAverages(filtered, availabilityMetric)
		if req.AsHours {
			for a := range summary.HourlyAverages {
				for h := range summary.HourlyAverages[a].Hours {
					summary.HourlyAverages[a].Hours[h].Value /= 3600
				}
			}
		}
	}

	if hours := serviceHours(filtered); hours != nil {
		meanH := mean(hours)
		summary.Stats = &AvailabilityStats{
			MeanHours:       meanH,
			MinHours:        minOf(hours),
			MaxHours:        maxOf(hours),
			AvailabilityPct: meanH / 24 * 100,
		}
	}

	columns := []string{"start_time"}
	if siteCol != "" {
		columns = append(columns, siteCol)
	}
	columns = append(columns, serviceTimeColumn)
	summary.Table = filtered.SelectColumns(columns).Head(tablePreviewRows)
	return summary
}

// AvailabilityExportFrame returns the filtered availability rows for download.
func AvailabilityExportFrame(f *dataset.Frame, req models.FilterRequest) *dataset.Frame {
	if f == nil {
		return nil
	}
	clean := f.Clone()
	normalize.CleanNumericColumns(clean, []string{serviceTimeColumn})
	normalize.ParseDateTimeColumn(clean, "start_time", normalize.UploadTimeLayout, true)
	if siteCol := clean.FindSiteColumn(); siteCol != "" {
		return clean.FilterByValues(siteCol, req.Sites)
	}
	return clean
}

// serviceHours collects the present service-time values converted to hours.
func serviceHours(f *dataset.Frame) []float64 {
	values, valid := normalize.NumericValues(f, serviceTimeColumn)
	if values == nil {
		return nil
	}
	hours := []float64{}
	for i, ok := range valid {
		if ok {
			hours = append(hours, values[i]/3600)
		}
	}
	if len(hours) == 0 {
		return nil
	}
	return hours
}
