package dashboard

import (
	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/models"
)

// PerformanceMetrics are the KPI columns of the performance exports.
var PerformanceMetrics = []MetricDef{
	{Column: "dl_data_traffic_mb", Label: "DL Traffic (MB)"},
	{Column: "ul_data_traffic_mb", Label: "UL Traffic (MB)"},
	{Column: "enodeb_dl_tgput_mb", Label: "eNodeB DL Throughput (MB)"},
	{Column: "lte_dl_cell_tgput_mb", Label: "LTE DL Cell Throughput (MB)"},
	{Column: "lte_ul_cell_tgput_mb", Label: "LTE UL Cell Throughput (MB)"},
	{Column: "lte_tu_prb_dl", Label: "PRB DL Utilization (%)"},
	{Column: "average_number_user", Label: "Average Users"},
	{Column: "enodeb_ul_tgput_mb", Label: "eNodeB UL Throughput (MB)"},
	{Column: "latency", Label: "Latency (ms)"},
	{Column: "tcp_pckt_loss_ratio", Label: "TCP Packet Loss Ratio"},
	{Column: "voice_traffic", Label: "Voice Traffic"},
}

// BuildPerformanceSummary summarizes the performance dataset under the given
// filters.
func BuildPerformanceSummary(f *dataset.Frame, req models.FilterRequest) *MetricSummary {
	return buildMetricSummary(f, PerformanceMetrics, req)
}

// PerformanceExportFrame returns the filtered performance rows for download.
func PerformanceExportFrame(f *dataset.Frame, req models.FilterRequest) *dataset.Frame {
	return metricExportFrame(f, PerformanceMetrics, req)
}
