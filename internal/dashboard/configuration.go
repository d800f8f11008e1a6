package dashboard

import (
	"strings"

	"github.com/a20121248/network-dashboard/internal/dataset"
)

// categoricalKeywords select the configuration columns worth a distinct-value
// count, matched case-insensitively against header names.
var categoricalKeywords = []string{"type", "band", "transmission", "energy", "provider", "battery"}

const maxCategoricalCounts = 4

// CategoricalCount is a distinct-value count for one configuration column.
type CategoricalCount struct {
	Column   string `json:"column"`
	Distinct int    `json:"distinct"`
}

// ConfigurationSummary is the configuration module response.
type ConfigurationSummary struct {
	Loaded bool `json:"loaded"`

	TotalRows       int  `json:"total_rows"`
	ConfiguredSites *int `json:"configured_sites,omitempty"`
	Columns         int  `json:"columns"`
	OperationBands  *int `json:"operation_bands,omitempty"`
	BTSTypes        *int `json:"bts_types,omitempty"`

	CategoricalCounts []CategoricalCount  `json:"categorical_counts,omitempty"`
	Preview           []map[string]string `json:"preview,omitempty"`
}

// BuildConfigurationSummary summarizes the configuration dataset: counts,
// distinct values for the interesting categorical columns, and a preview.
func BuildConfigurationSummary(f *dataset.Frame) *ConfigurationSummary {
	if f == nil {
		return &ConfigurationSummary{}
	}
	summary := &ConfigurationSummary{
		Loaded:    true,
		TotalRows: len(f.Rows),
		Columns:   len(f.Headers),
	}
	if siteCol := f.FindSiteColumn(); siteCol != "" {
		summary.ConfiguredSites = intPtr(f.DistinctCount(siteCol))
	}
	if f.HasColumn("Operation Band") {
		summary.OperationBands = intPtr(f.DistinctCount("Operation Band"))
	}
	if f.HasColumn("TYPE BTS") {
		summary.BTSTypes = intPtr(f.DistinctCount("TYPE BTS"))
	}

	for _, header := range f.Headers {
		if len(summary.CategoricalCounts) == maxCategoricalCounts {
			break
		}
		lower := strings.ToLower(header)
		for _, kw := range categoricalKeywords {
			if strings.Contains(lower, kw) {
				summary.CategoricalCounts = append(summary.CategoricalCounts, CategoricalCount{
					Column:   header,
					Distinct: f.DistinctCount(header),
				})
				break
			}
		}
	}

	summary.Preview = f.Head(tablePreviewRows)
	return summary
}
