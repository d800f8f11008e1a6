package dashboard

import (
	"time"

	"github.com/a20121248/network-dashboard/internal/dataset"
)

// ModuleStatus is the per-category card of the overview page.
type ModuleStatus struct {
	Category string `json:"category"`
	Loaded   bool   `json:"loaded"`
	FileName string `json:"file_name,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Columns  int    `json:"columns,omitempty"`
}

// Overview is the landing-page summary across every dataset.
type Overview struct {
	DatasetsLoaded int            `json:"datasets_loaded"`
	TotalDatasets  int            `json:"total_datasets"`
	TotalRecords   int            `json:"total_records"`
	UniqueSites    int            `json:"unique_sites"`
	UpdatedAt      string         `json:"updated_at"`
	Modules        []ModuleStatus `json:"modules"`
}

// BuildOverview aggregates headline counts over the session's datasets.
// Unique sites are collected across every frame through the site column
// lookup, so the same site uploaded in two categories counts once.
func BuildOverview(datasets map[dataset.Category]*dataset.Frame, now time.Time) *Overview {
	overview := &Overview{
		TotalDatasets: len(dataset.Categories),
		UpdatedAt:     now.Format("15:04"),
	}
	uniqueSites := map[string]bool{}

	for _, cat := range dataset.Categories {
		status := ModuleStatus{Category: string(cat)}
		if f := datasets[cat]; f != nil {
			status.Loaded = true
			status.FileName = f.FileName
			status.Rows = len(f.Rows)
			status.Columns = len(f.Headers)

			overview.DatasetsLoaded++
			overview.TotalRecords += len(f.Rows)
			if siteCol := f.FindSiteColumn(); siteCol != "" {
				for _, site := range f.DistinctValues(siteCol) {
					uniqueSites[site] = true
				}
			}
		}
		overview.Modules = append(overview.Modules, status)
	}
	overview.UniqueSites = len(uniqueSites)
	return overview
}
