package models

// DateRange selects a time window. Quick is one of "all", "last_day",
// "last_3_days", "last_week", "custom"; Start/End are "2006-01-02" dates and
// only read when Quick is "custom" (or empty, which means custom when either
// bound is set).
type DateRange struct {
	Quick string `json:"quick,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// FilterRequest is the common body of summary and export endpoints. Empty
// slices select everything.
type FilterRequest struct {
	Sites     []string  `json:"sites,omitempty"`
	Metrics   []string  `json:"metrics,omitempty"`
	Metric    string    `json:"metric,omitempty"`
	DateRange DateRange `json:"date_range,omitempty"`
	Normalize bool      `json:"normalize,omitempty"`
	AsHours   bool      `json:"as_hours,omitempty"`

	// Faults geographic multi-selects, resolved through the sites dataset.
	Regions    []string `json:"regions,omitempty"`
	Provinces  []string `json:"provinces,omitempty"`
	Districts  []string `json:"districts,omitempty"`
	Localities []string `json:"localities,omitempty"`
}

// ExportRequest adds the output format to a filter. Format is "csv" or "xlsx";
// empty defaults to csv.
type ExportRequest struct {
	FilterRequest
	Format string `json:"format,omitempty"`
}

// DrillRequest is a provisioning navigation event: select Value at Level
// (0=region .. 3=locality). An empty Value deselects the level.
type DrillRequest struct {
	Level int    `json:"level"`
	Value string `json:"value"`
}
