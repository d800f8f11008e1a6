package dashboard

import (
	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/models"
)

// QualityMetrics are the accessibility and retainability KPI columns.
var QualityMetrics = []MetricDef{
	{Column: "lte_rrc_setup_suc", Label: "RRC Setup Success"},
	{Column: "lte_rrc_attempt", Label: "RRC Attempts"},
	{Column: "fails_rrc_setup", Label: "RRC Setup Fails"},
	{Column: "lte_rrc_sr", Label: "RRC Success Rate (%)"},
	{Column: "init_e_rab_suc_setup", Label: "Initial E-RAB Success"},
	{Column: "add_e_rab_suc_setup", Label: "Additional E-RAB Success"},
	{Column: "add_e_rab_setup_att", Label: "Additional E-RAB Attempts"},
	{Column: "init_e_rab_setup_att", Label: "Initial E-RAB Attempts"},
	{Column: "lte_e_rab_sr", Label: "E-RAB Success Rate (%)"},
	{Column: "lte_call_drop", Label: "Call Drops"},
	{Column: "lte_call_attempt", Label: "Call Attempts"},
	{Column: "lte_cdr", Label: "Call Drop Rate (%)"},
}

// BuildQualitySummary summarizes the quality dataset under the given filters.
func BuildQualitySummary(f *dataset.Frame, req models.FilterRequest) *MetricSummary {
	return buildMetricSummary(f, QualityMetrics, req)
}

// QualityExportFrame returns the filtered quality rows for download.
func QualityExportFrame(f *dataset.Frame, req models.FilterRequest) *dataset.Frame {
	return metricExportFrame(f, QualityMetrics, req)
}
