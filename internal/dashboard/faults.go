package dashboard

import (
	"sort"
	"time"

	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/models"
	"github.com/a20121248/network-dashboard/internal/normalize"
)

// siteMappingColumns are the sites-dataset columns used to resolve geographic
// filters onto fault records. SITE_NAME plus at least one geography column is
// required for the join.
var siteMappingColumns = []string{"SITE_NAME", "Región", "Provincia", "Distrito", "Localidad"}

// ResolutionStats summarizes duration_minutes over resolved faults.
type ResolutionStats struct {
	MeanMinutes   float64 `json:"mean_minutes"`
	MedianMinutes float64 `json:"median_minutes"`
	MaxMinutes    float64 `json:"max_minutes"`
	Resolved      int     `json:"resolved"`
}

// MapPoint is one site on the active-faults map.
type MapPoint struct {
	Site         string  `json:"site"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	ActiveAlarms int     `json:"active_alarms"`
	Region       string  `json:"region,omitempty"`
	Province     string  `json:"province,omitempty"`
	District     string  `json:"district,omitempty"`
	AlarmName    string  `json:"alarm_name,omitempty"`
	StartTime    string  `json:"start_time,omitempty"`
}

// FaultsSummary is the faults module response.
type FaultsSummary struct {
	Loaded bool `json:"loaded"`
	Empty  bool `json:"empty"`

	TotalFaults       int  `json:"total_faults"`
	ActiveFaults      *int `json:"active_faults,omitempty"`
	UniqueSites       *int `json:"unique_sites,omitempty"`
	ProjectsAvailable *int `json:"projects_available,omitempty"`
	DateParsed        bool `json:"date_parsed"`

	FilteredFaults int  `json:"filtered_faults"`
	FilteredActive *int `json:"filtered_active,omitempty"`
	FilteredSites  *int `json:"filtered_sites,omitempty"`

	Resolution     *ResolutionStats `json:"resolution,omitempty"`
	SlowestSites   []RankedSite     `json:"slowest_sites,omitempty"`
	LongestOpen    []RankedSite     `json:"longest_open,omitempty"`
	TopSitesTotal  []CountByLabel   `json:"top_sites_total,omitempty"`
	TopSitesActive []CountByLabel   `json:"top_sites_active,omitempty"`

	HourlyHistogram  []CountByLabel `json:"hourly_histogram,omitempty"`
	WeekdayHistogram []CountByLabel `json:"weekday_histogram,omitempty"`

	MapPoints []MapPoint          `json:"map_points,omitempty"`
	Table     []map[string]string `json:"table,omitempty"`
}

const (
	topSites = 10

	// minResolvedForRanking excludes sites with too few resolved faults from
	// the slowest-sites chart.
	minResolvedForRanking = 3
)

// prepareFaults normalizes a faults frame: lowercase headers, geography
// values uppercased, status values lowercased, timestamps parsed.
func prepareFaults(f *dataset.Frame) (*dataset.Frame, bool) {
	clean := f.Clone()
	clean.LowercaseHeaders()
	for _, col := range []string{"región", "provincia", "distrito", "localidad", "region"} {
		clean.UppercaseColumn(col)
	}
	for _, col := range []string{"alarm_status", "status", "estado"} {
		clean.LowercaseColumn(col)
	}
	dateOK := normalize.ParseDateTimeColumn(clean, "start_time", normalize.UploadTimeLayout, true)
	normalize.ParseDateTimeColumn(clean, "end_time", normalize.UploadTimeLayout, false)
	return clean, dateOK
}

// FilteredFaults runs the full fault pipeline: normalization, geographic
// filtering through the sites dataset, alarm_id deduplication, then the
// date-range and site-list table filters. Returns the filtered frame and
// whether start_time parsed.
func FilteredFaults(faults, sites *dataset.Frame, req models.FilterRequest) (*dataset.Frame, bool) {
	if faults == nil {
		return nil, false
	}
	clean, dateOK := prepareFaults(faults)

	if geoSelected(req) {
		clean = filterByGeography(clean, sites, req)
	}
	clean = dedupByAlarmID(clean)
	clean = applyDateRange(clean, req.DateRange, dateOK)
	if siteCol := clean.FindSiteColumn(); siteCol != "" {
		clean = clean.FilterByValues(siteCol, req.Sites)
	}
	return clean, dateOK
}

// BuildFaultsSummary summarizes the faults dataset under the given filters.
// The sites dataset is optional; without it the geographic filter and the map
// are skipped.
func BuildFaultsSummary(faults, sites *dataset.Frame, req models.FilterRequest, now time.Time) *FaultsSummary {
	if faults == nil {
		return &FaultsSummary{}
	}
	clean, dateOK := prepareFaults(faults)

	summary := &FaultsSummary{
		Loaded:      true,
		TotalFaults: len(clean.Rows),
		DateParsed:  dateOK,
	}
	if clean.HasColumn("alarm_status") {
		summary.ActiveFaults = intPtr(countActive(clean))
	}
	siteCol := clean.FindSiteColumn()
	if siteCol != "" {
		summary.UniqueSites = intPtr(clean.DistinctCount(siteCol))
	}
	if sites != nil {
		summary.ProjectsAvailable = intPtr(len(sites.Rows))
	}

	filtered, _ := FilteredFaults(faults, sites, req)
	summary.FilteredFaults = len(filtered.Rows)
	if filtered.HasColumn("alarm_status") {
		summary.FilteredActive = intPtr(countActive(filtered))
	}
	siteCol = filtered.FindSiteColumn()
	if siteCol != "" {
		summary.FilteredSites = intPtr(filtered.DistinctCount(siteCol))
	}
	if len(filtered.Rows) == 0 {
		summary.Empty = true
		return summary
	}

	if siteCol != "" {
		summary.Resolution, summary.SlowestSites = resolutionStats(filtered, siteCol)
		summary.LongestOpen = longestOpenSites(filtered, siteCol, now)
		summary.TopSitesTotal = topCounts(countBySite(filtered, siteCol, false), topSites)
		if filtered.HasColumn("alarm_status") {
			summary.TopSitesActive = topCounts(countBySite(filtered, siteCol, true), topSites)
		}
	}
	if dateOK {
		summary.HourlyHistogram = histogram(filtered, "hour")
		summary.WeekdayHistogram = histogram(filtered, "day_of_week")
	}
	if sites != nil {
		summary.MapPoints = activeFaultMap(filtered, sites, siteCol)
	}

	summary.Table = filtered.SelectColumns(faultTableColumns(siteCol)).Head(tablePreviewRows)
	return summary
}

// ActiveFaultsExport returns the active faults with the essential columns,
// oldest first, for the active-faults workbook.
func ActiveFaultsExport(faults, sites *dataset.Frame, req models.FilterRequest) *dataset.Frame {
	filtered, _ := FilteredFaults(faults, sites, req)
	if filtered == nil || !filtered.HasColumn("alarm_status") {
		return nil
	}
	statusIdx := filtered.ColumnIndex("alarm_status")
	active := filtered.Filter(func(row int) bool {
		return filtered.Cell(row, statusIdx) == "active"
	})
	if len(active.Rows) == 0 {
		return nil
	}

	if idx := active.ColumnIndex("start_time"); idx != -1 {
		sort.SliceStable(active.Rows, func(i, j int) bool {
			return active.Cell(i, idx) < active.Cell(j, idx)
		})
	}
	columns := []string{"start_time", "end_time"}
	if siteCol := active.FindSiteColumn(); siteCol != "" {
		columns = append(columns, siteCol)
	}
	columns = append(columns, "cell_name", "alarm_id", "alarm_name", "alarm_status")
	return active.SelectColumns(columns)
}

func geoSelected(req models.FilterRequest) bool {
	return len(req.Regions) > 0 || len(req.Provinces) > 0 ||
		len(req.Districts) > 0 || len(req.Localities) > 0
}

// filterByGeography narrows faults to the sites matching the geographic
// multi-selects and joins the surviving geography columns on. Records are
// never duplicated: the site mapping is deduplicated and joined first-match.
func filterByGeography(faults, sites *dataset.Frame, req models.FilterRequest) *dataset.Frame {
	if sites == nil {
		return faults
	}
	mapping := siteMapping(sites)
	if mapping == nil {
		return faults
	}
	mapping = mapping.FilterByValues("Región", req.Regions)
	mapping = mapping.FilterByValues("Provincia", req.Provinces)
	mapping = mapping.FilterByValues("Distrito", req.Districts)
	mapping = mapping.FilterByValues("Localidad", req.Localities)

	siteCol := faults.FindSiteColumn()
	if siteCol == "" {
		return faults
	}
	validSites := map[string]int{}
	for row := range mapping.Rows {
		name := mapping.Cell(row, 0)
		if _, seen := validSites[name]; !seen {
			validSites[name] = row
		}
	}

	siteIdx := faults.ColumnIndex(siteCol)
	out := faults.Filter(func(row int) bool {
		_, ok := validSites[faults.Cell(row, siteIdx)]
		return ok
	})

	// Join the geography of each site's first mapping row.
	for col := 1; col < len(mapping.Headers); col++ {
		values := make([]string, len(out.Rows))
		outSiteIdx := out.ColumnIndex(siteCol)
		for row := range out.Rows {
			if mapRow, ok := validSites[out.Cell(row, outSiteIdx)]; ok {
				values[row] = mapping.Cell(mapRow, col)
			}
		}
		if !out.HasColumn(mapping.Headers[col]) {
			out.AppendColumn(mapping.Headers[col], values)
		}
	}
	return out
}

// siteMapping extracts the deduplicated site-to-geography table from the
// sites dataset. Needs SITE_NAME plus at least one geography column.
func siteMapping(sites *dataset.Frame) *dataset.Frame {
	existing := []string{}
	for _, col := range siteMappingColumns {
		if sites.HasColumn(col) {
			existing = append(existing, col)
		}
	}
	if len(existing) < 2 || existing[0] != "SITE_NAME" {
		return nil
	}
	mapping := sites.SelectColumns(existing)

	seen := map[string]bool{}
	return mapping.Filter(func(row int) bool {
		key := ""
		for col := range mapping.Headers {
			key += mapping.Cell(row, col) + "\x00"
		}
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}

// dedupByAlarmID keeps the first record per alarm_id. Frames without the
// column pass through.
func dedupByAlarmID(f *dataset.Frame) *dataset.Frame {
	idx := f.ColumnIndex("alarm_id")
	if idx == -1 {
		return f
	}
	seen := map[string]bool{}
	return f.Filter(func(row int) bool {
		id := f.Cell(row, idx)
		if seen[id] {
			return false
		}
		seen[id] = true
		return true
	})
}

func countActive(f *dataset.Frame) int {
	idx := f.ColumnIndex("alarm_status")
	n := 0
	for row := range f.Rows {
		if f.Cell(row, idx) == "active" {
			n++
		}
	}
	return n
}

func countBySite(f *dataset.Frame, siteCol string, activeOnly bool) map[string]int {
	siteIdx := f.ColumnIndex(siteCol)
	statusIdx := f.ColumnIndex("alarm_status")
	counts := map[string]int{}
	for row := range f.Rows {
		if activeOnly && f.Cell(row, statusIdx) != "active" {
			continue
		}
		if site := f.Cell(row, siteIdx); site != "" {
			counts[site]++
		}
	}
	return counts
}

// resolutionStats summarizes resolution time over the faults that have a
// duration, plus the slowest sites with enough resolved faults to rank.
func resolutionStats(f *dataset.Frame, siteCol string) (*ResolutionStats, []RankedSite) {
	durations, valid := normalize.NumericValues(f, "duration_minutes")
	if durations == nil {
		return nil, nil
	}
	siteIdx := f.ColumnIndex(siteCol)
	resolved := []float64{}
	bySite := map[string][]float64{}
	for row, ok := range valid {
		if !ok {
			continue
		}
		resolved = append(resolved, durations[row])
		if site := f.Cell(row, siteIdx); site != "" {
			bySite[site] = append(bySite[site], durations[row])
		}
	}
	if len(resolved) == 0 {
		return nil, nil
	}
	stats := &ResolutionStats{
		MeanMinutes:   mean(resolved),
		MedianMinutes: median(resolved),
		MaxMinutes:    maxOf(resolved),
		Resolved:      len(resolved),
	}
	return stats, rankTop(bySite, minResolvedForRanking, topSites)
}

// longestOpenSites ranks sites by mean hours their active faults have been
// open, measured against now.
func longestOpenSites(f *dataset.Frame, siteCol string, now time.Time) []RankedSite {
	if !f.HasColumn("alarm_status") {
		return nil
	}
	starts, valid := normalize.Timestamps(f, "start_time")
	if starts == nil {
		return nil
	}
	siteIdx := f.ColumnIndex(siteCol)
	statusIdx := f.ColumnIndex("alarm_status")
	bySite := map[string][]float64{}
	for row := range f.Rows {
		if f.Cell(row, statusIdx) != "active" || !valid[row] {
			continue
		}
		site := f.Cell(row, siteIdx)
		if site == "" {
			continue
		}
		bySite[site] = append(bySite[site], now.Sub(starts[row]).Hours())
	}
	return rankTop(bySite, 1, topSites)
}

// histogram counts rows per value of a derived time column.
func histogram(f *dataset.Frame, column string) []CountByLabel {
	idx := f.ColumnIndex(column)
	if idx == -1 {
		return nil
	}
	counts := map[string]int{}
	for row := range f.Rows {
		if v := f.Cell(row, idx); v != "" {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	out := make([]CountByLabel, 0, len(counts))
	for label, count := range counts {
		out = append(out, CountByLabel{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return lessLabel(out[i].Label, out[j].Label) })
	return out
}

// lessLabel orders hour histograms numerically and weekday histograms by
// calendar position, falling back to string order.
func lessLabel(a, b string) bool {
	if ai, aok := parseHour(a); aok {
		if bi, bok := parseHour(b); bok {
			return ai < bi
		}
	}
	wa, waOK := weekdayIndex[a]
	wb, wbOK := weekdayIndex[b]
	if waOK && wbOK {
		return wa < wb
	}
	return a < b
}

var weekdayIndex = map[string]int{
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3,
	"Friday": 4, "Saturday": 5, "Sunday": 6,
}

// coordinateColumns are the accepted latitude/longitude spellings, tried in
// order.
var coordinateColumns = [][2]string{
	{"Latitud (WGS 84)", "Longitud (WGS 84)"},
	{"Latitud", "Longitud"},
	{"lat", "lon"},
}

// activeFaultMap joins active faults to site coordinates. Sites without valid
// coordinates are dropped.
func activeFaultMap(faults, sites *dataset.Frame, siteCol string) []MapPoint {
	if siteCol == "" || !faults.HasColumn("alarm_status") || !sites.HasColumn("SITE_NAME") {
		return nil
	}
	latCol, lonCol := "", ""
	for _, pair := range coordinateColumns {
		if sites.HasColumn(pair[0]) && sites.HasColumn(pair[1]) {
			latCol, lonCol = pair[0], pair[1]
			break
		}
	}
	if latCol == "" {
		return nil
	}

	statusIdx := faults.ColumnIndex("alarm_status")
	siteIdx := faults.ColumnIndex(siteCol)
	alarmNameIdx := faults.ColumnIndex("alarm_name")
	startIdx := faults.ColumnIndex("start_time")

	type faultInfo struct {
		count     int
		alarmName string
		startTime string
	}
	active := map[string]*faultInfo{}
	for row := range faults.Rows {
		if faults.Cell(row, statusIdx) != "active" {
			continue
		}
		site := faults.Cell(row, siteIdx)
		if site == "" {
			continue
		}
		info := active[site]
		if info == nil {
			info = &faultInfo{
				alarmName: faults.Cell(row, alarmNameIdx),
				startTime: faults.Cell(row, startIdx),
			}
			active[site] = info
		}
		info.count++
	}
	if len(active) == 0 {
		return nil
	}

	nameIdx := sites.ColumnIndex("SITE_NAME")
	latIdx := sites.ColumnIndex(latCol)
	lonIdx := sites.ColumnIndex(lonCol)
	regionIdx := sites.ColumnIndex("Región")
	provinceIdx := sites.ColumnIndex("Provincia")
	districtIdx := sites.ColumnIndex("Distrito")

	points := []MapPoint{}
	mapped := map[string]bool{}
	for row := range sites.Rows {
		name := sites.Cell(row, nameIdx)
		info, ok := active[name]
		if !ok || mapped[name] {
			continue
		}
		lat, latOK := normalize.ParseNumber(sites.Cell(row, latIdx))
		lon, lonOK := normalize.ParseNumber(sites.Cell(row, lonIdx))
		if !latOK || !lonOK {
			continue
		}
		mapped[name] = true
		points = append(points, MapPoint{
			Site:         name,
			Lat:          lat,
			Lon:          lon,
			ActiveAlarms: info.count,
			Region:       sites.Cell(row, regionIdx),
			Province:     sites.Cell(row, provinceIdx),
			District:     sites.Cell(row, districtIdx),
			AlarmName:    info.alarmName,
			StartTime:    info.startTime,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Site < points[j].Site })
	return points
}

func faultTableColumns(siteCol string) []string {
	columns := []string{"start_time", "end_time", "duration_minutes"}
	if siteCol != "" {
		columns = append(columns, siteCol)
	}
	columns = append(columns, "cell_name", "alarm_id", "alarm_name", "alarm_status")
	return columns
}
