// Package drilldown models the provisioning module's hierarchical geographic
// navigation as an explicit reducer over a four-level selection state.
package drilldown

import "github.com/a20121248/network-dashboard/internal/dataset"

// Level indexes the geographic hierarchy, broadest first.
type Level int

const (
	LevelRegion Level = iota
	LevelProvince
	LevelDistrict
	LevelLocality

	numLevels = 4
)

// HierarchyColumns are the dataset columns backing each level, in order.
var HierarchyColumns = [numLevels]string{
	"Departamento", "Provincia", "Distrito", "Localidad",
}

// State holds the current selection at each level. Empty string means
// unselected. Invariant: a level can only be selected when every level
// above it is selected; the reducer maintains this.
type State struct {
	Selections [numLevels]string `json:"selections"`
}

// Event is a user navigation action. An empty Value deselects the level,
// which is the same as resetting from that level down.
type Event struct {
	Level Level  `json:"level"`
	Value string `json:"value"`
}

// Depth returns how many consecutive levels are selected, 0 through 4.
func (s State) Depth() int {
	for i, v := range s.Selections {
		if v == "" {
			return i
		}
	}
	return numLevels
}

// Selection returns the value chosen at a level, or "".
func (s State) Selection(level Level) string {
	if level < 0 || level >= numLevels {
		return ""
	}
	return s.Selections[level]
}

// Apply is the single reducer for select and deselect events: choosing a
// value at level i sets it and clears every deeper level. No event is
// invalid. Selecting at a level whose ancestors are unselected only clears
// downward, leaving the state consistent.
func Apply(s State, ev Event) State {
	if ev.Level < 0 || ev.Level >= numLevels {
		return s
	}
	next := s
	next.Selections[ev.Level] = ev.Value
	for l := ev.Level + 1; l < numLevels; l++ {
		next.Selections[l] = ""
	}
	if ev.Value == "" {
		next.Selections[ev.Level] = ""
	}
	return next
}

// Reset returns the empty state (the explicit "restart navigation" action).
func Reset() State {
	return State{}
}

// Options computes the selectable values at a level: the distinct values of
// its column among rows matching every ancestor selection. It is recomputed
// from the live frame on every call because the dataset can be replaced
// between renders.
func Options(f *dataset.Frame, s State, level Level) []string {
	if f == nil || level < 0 || level >= numLevels {
		return nil
	}
	return FilterFrame(f, truncated(s, level)).DistinctValues(HierarchyColumns[level])
}

// FilterFrame narrows a frame to the rows matching every selected level.
func FilterFrame(f *dataset.Frame, s State) *dataset.Frame {
	if f == nil {
		return nil
	}
	out := f
	for l := 0; l < numLevels; l++ {
		sel := s.Selections[l]
		if sel == "" {
			break
		}
		col := HierarchyColumns[l]
		idx := out.ColumnIndex(col)
		if idx == -1 {
			break
		}
		out = out.Filter(func(row int) bool { return out.Cell(row, idx) == sel })
	}
	return out
}

// truncated clears the given level and everything below it, so Options sees
// only ancestor constraints.
func truncated(s State, level Level) State {
	out := s
	for l := level; l < numLevels; l++ {
		out.Selections[l] = ""
	}
	return out
}
