package dashboard

import (
	"sort"
	"time"

	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/drilldown"
	"github.com/a20121248/network-dashboard/internal/normalize"
)

// LevelStat is one row of a drill-down level's statistics table: record count
// plus distinct values at the next level down.
type LevelStat struct {
	Name     string `json:"name"`
	Sites    int    `json:"sites"`
	Children int    `json:"children,omitempty"`
}

// LevelView is the state of one drill-down level: the selectable options, the
// per-option statistics, and the current selection.
type LevelView struct {
	Level    int         `json:"level"`
	Column   string      `json:"column"`
	Selected string      `json:"selected,omitempty"`
	Options  []string    `json:"options"`
	Stats    []LevelStat `json:"stats,omitempty"`
}

// ProvisioningSummary is the provisioning module response.
type ProvisioningSummary struct {
	Loaded      bool `json:"loaded"`
	HierarchyOK bool `json:"hierarchy_ok"`

	TotalSites  int  `json:"total_sites"`
	Departments *int `json:"departments,omitempty"`
	Provinces   *int `json:"provinces,omitempty"`
	Districts   *int `json:"districts,omitempty"`
	Localities  *int `json:"localities,omitempty"`

	Levels   []LevelView         `json:"levels,omitempty"`
	LeafRows []map[string]string `json:"leaf_rows,omitempty"`
}

// PrepareProvisioning normalizes the provisioning frame: geography columns
// uppercased, activation dates rewritten through the day-first layout.
// Unparseable dates become empty rather than failing the dataset.
func PrepareProvisioning(f *dataset.Frame) *dataset.Frame {
	clean := f.Clone()
	for _, col := range drilldown.HierarchyColumns {
		clean.UppercaseColumn(col)
	}
	if idx := clean.ColumnIndex("Fecha_Activacion"); idx != -1 {
		values := make([]string, len(clean.Rows))
		for i := range clean.Rows {
			raw := clean.Cell(i, idx)
			if raw == "" {
				continue
			}
			if t, err := time.Parse(normalize.ActivationDateLayout, raw); err == nil {
				values[i] = t.Format(normalize.ActivationDateLayout)
			}
		}
		clean.SetColumn("Fecha_Activacion", values)
	}
	return clean
}

// BuildProvisioningSummary renders the drill-down explorer for the current
// navigation state. The hierarchy needs at least two of the four geography
// columns; otherwise only the headline count is returned.
func BuildProvisioningSummary(f *dataset.Frame, drill drilldown.State) *ProvisioningSummary {
	if f == nil {
		return &ProvisioningSummary{}
	}
	clean := PrepareProvisioning(f)

	summary := &ProvisioningSummary{
		Loaded:     true,
		TotalSites: len(clean.Rows),
	}
	if hierarchyWidth(clean) < 2 {
		return summary
	}
	summary.HierarchyOK = true

	summary.Departments = distinctOrNil(clean, "Departamento")
	summary.Provinces = pathCountOrNil(clean, "Departamento", "Provincia")
	summary.Districts = pathCountOrNil(clean, "Departamento", "Provincia", "Distrito")
	summary.Localities = pathCountOrNil(clean, "Departamento", "Provincia", "Distrito", "Localidad")

	// One view per reachable level: the top level plus one below the current
	// selection depth.
	depth := drill.Depth()
	for level := 0; level <= depth && level < len(drilldown.HierarchyColumns); level++ {
		col := drilldown.HierarchyColumns[level]
		if !clean.HasColumn(col) {
			break
		}
		view := LevelView{
			Level:    level,
			Column:   col,
			Selected: drill.Selection(drilldown.Level(level)),
			Options:  drilldown.Options(clean, drill, drilldown.Level(level)),
			Stats:    levelStats(clean, drill, level),
		}
		summary.Levels = append(summary.Levels, view)
	}

	// District selected: expose the site records underneath it.
	if drill.Selection(drilldown.LevelDistrict) != "" {
		summary.LeafRows = drilldown.FilterFrame(clean, drill).Head(tablePreviewRows)
	}
	return summary
}

// ProvisioningExportFrame returns the rows matching the navigation state,
// and the deepest selected value for the download filename.
func ProvisioningExportFrame(f *dataset.Frame, drill drilldown.State) (*dataset.Frame, string) {
	if f == nil {
		return nil, ""
	}
	clean := PrepareProvisioning(f)
	suffix := ""
	for level := len(drilldown.HierarchyColumns) - 1; level >= 0; level-- {
		if sel := drill.Selection(drilldown.Level(level)); sel != "" {
			suffix = sel
			break
		}
	}
	return drilldown.FilterFrame(clean, drill), suffix
}

func hierarchyWidth(f *dataset.Frame) int {
	n := 0
	for _, col := range drilldown.HierarchyColumns {
		if f.HasColumn(col) {
			n++
		}
	}
	return n
}

func distinctOrNil(f *dataset.Frame, column string) *int {
	if !f.HasColumn(column) {
		return nil
	}
	return intPtr(f.DistinctCount(column))
}

// pathCountOrNil counts distinct ancestor paths ending at the last column,
// so two districts with the same name in different provinces count twice.
// Falls back to a plain distinct count when the ancestors are missing.
func pathCountOrNil(f *dataset.Frame, columns ...string) *int {
	leaf := columns[len(columns)-1]
	if !f.HasColumn(leaf) {
		return nil
	}
	for _, col := range columns {
		if !f.HasColumn(col) {
			return intPtr(f.DistinctCount(leaf))
		}
	}
	indices := make([]int, len(columns))
	for i, col := range columns {
		indices[i] = f.ColumnIndex(col)
	}
	paths := make(map[string]bool)
	for row := range f.Rows {
		key := ""
		for _, idx := range indices {
			key += f.Cell(row, idx) + "\x00"
		}
		paths[key] = true
	}
	return intPtr(len(paths))
}

// levelStats aggregates the frame under the ancestor selections: per option
// at this level, the record count and the distinct values one level down.
func levelStats(f *dataset.Frame, drill drilldown.State, level int) []LevelStat {
	scoped := drilldown.FilterFrame(f, ancestorsOnly(drill, level))
	col := drilldown.HierarchyColumns[level]
	idx := scoped.ColumnIndex(col)
	if idx == -1 {
		return nil
	}
	childIdx := -1
	if level+1 < len(drilldown.HierarchyColumns) {
		childIdx = scoped.ColumnIndex(drilldown.HierarchyColumns[level+1])
	}

	counts := map[string]int{}
	children := map[string]map[string]bool{}
	for row := range scoped.Rows {
		name := scoped.Cell(row, idx)
		if name == "" {
			continue
		}
		counts[name]++
		if childIdx != -1 {
			if children[name] == nil {
				children[name] = map[string]bool{}
			}
			if child := scoped.Cell(row, childIdx); child != "" {
				children[name][child] = true
			}
		}
	}

	stats := make([]LevelStat, 0, len(counts))
	for name, count := range counts {
		stats = append(stats, LevelStat{Name: name, Sites: count, Children: len(children[name])})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Sites != stats[j].Sites {
			return stats[i].Sites > stats[j].Sites
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

// ancestorsOnly keeps the selections above the given level.
func ancestorsOnly(drill drilldown.State, level int) drilldown.State {
	out := drill
	for l := level; l < len(drilldown.HierarchyColumns); l++ {
		out.Selections[l] = ""
	}
	return out
}
