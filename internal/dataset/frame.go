package dataset

import (
	"sort"
	"strings"
	"time"
)

// Frame is a loaded CSV dataset held in memory. All cells are kept as
// strings on read; typed interpretation happens in the normalize package.
type Frame struct {
	Headers    []string
	Rows       [][]string
	FileName   string
	Category   Category
	UploadedAt time.Time
}

// ColumnIndex returns the index of the named column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, h := range f.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	return f.ColumnIndex(name) != -1
}

// Cell returns the value at (row, col index), tolerating ragged rows.
func (f *Frame) Cell(row, col int) string {
	if row < 0 || row >= len(f.Rows) || col < 0 || col >= len(f.Rows[row]) {
		return ""
	}
	return f.Rows[row][col]
}

// Column returns all values of the named column, empty-padded for short rows.
// Returns nil if the column does not exist.
func (f *Frame) Column(name string) []string {
	idx := f.ColumnIndex(name)
	if idx == -1 {
		return nil
	}
	values := make([]string, len(f.Rows))
	for i := range f.Rows {
		values[i] = f.Cell(i, idx)
	}
	return values
}

// DistinctValues returns the sorted distinct non-empty values of a column.
func (f *Frame) DistinctValues(name string) []string {
	idx := f.ColumnIndex(name)
	if idx == -1 {
		return nil
	}
	seen := make(map[string]bool)
	for i := range f.Rows {
		if v := f.Cell(i, idx); v != "" {
			seen[v] = true
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// DistinctCount returns the number of distinct non-empty values of a column,
// or -1 if the column is missing.
func (f *Frame) DistinctCount(name string) int {
	idx := f.ColumnIndex(name)
	if idx == -1 {
		return -1
	}
	seen := make(map[string]bool)
	for i := range f.Rows {
		if v := f.Cell(i, idx); v != "" {
			seen[v] = true
		}
	}
	return len(seen)
}

// Filter returns a new Frame containing the rows for which keep returns true.
// Headers are shared, rows are not copied.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	out := &Frame{
		Headers:    f.Headers,
		FileName:   f.FileName,
		Category:   f.Category,
		UploadedAt: f.UploadedAt,
	}
	for i := range f.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, f.Rows[i])
		}
	}
	return out
}

// FilterByValues keeps rows whose column value is in the given set. An empty
// or nil set keeps every row (empty selection means "show all").
func (f *Frame) FilterByValues(column string, values []string) *Frame {
	if len(values) == 0 {
		return f
	}
	idx := f.ColumnIndex(column)
	if idx == -1 {
		return f
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return f.Filter(func(row int) bool { return set[f.Cell(row, idx)] })
}

// Clone deep-copies the frame so normalization passes can rewrite cells
// without mutating the stored dataset.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Headers:    append([]string(nil), f.Headers...),
		Rows:       make([][]string, len(f.Rows)),
		FileName:   f.FileName,
		Category:   f.Category,
		UploadedAt: f.UploadedAt,
	}
	for i, row := range f.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// AppendColumn adds a derived column. The values slice must align with Rows;
// short rows are padded so the new cell lands at the right index.
func (f *Frame) AppendColumn(name string, values []string) {
	width := len(f.Headers)
	f.Headers = append(f.Headers, name)
	for i := range f.Rows {
		for len(f.Rows[i]) < width {
			f.Rows[i] = append(f.Rows[i], "")
		}
		v := ""
		if i < len(values) {
			v = values[i]
		}
		f.Rows[i] = append(f.Rows[i], v)
	}
}

// SetColumn overwrites an existing column in place.
func (f *Frame) SetColumn(name string, values []string) {
	idx := f.ColumnIndex(name)
	if idx == -1 {
		return
	}
	for i := range f.Rows {
		for len(f.Rows[i]) <= idx {
			f.Rows[i] = append(f.Rows[i], "")
		}
		if i < len(values) {
			f.Rows[i][idx] = values[i]
		}
	}
}

// LowercaseHeaders rewrites every header to lower case (faults datasets are
// normalized this way before column lookups).
func (f *Frame) LowercaseHeaders() {
	for i, h := range f.Headers {
		f.Headers[i] = strings.ToLower(h)
	}
}

// UppercaseColumn rewrites the values of a column to upper case, if present.
func (f *Frame) UppercaseColumn(name string) {
	idx := f.ColumnIndex(name)
	if idx == -1 {
		return
	}
	for i := range f.Rows {
		if idx < len(f.Rows[i]) {
			f.Rows[i][idx] = strings.ToUpper(f.Rows[i][idx])
		}
	}
}

// LowercaseColumn rewrites the values of a column to lower case, if present.
func (f *Frame) LowercaseColumn(name string) {
	idx := f.ColumnIndex(name)
	if idx == -1 {
		return
	}
	for i := range f.Rows {
		if idx < len(f.Rows[i]) {
			f.Rows[i][idx] = strings.ToLower(f.Rows[i][idx])
		}
	}
}

// SelectColumns returns a new frame restricted to the named columns that
// exist, preserving the given order.
func (f *Frame) SelectColumns(names []string) *Frame {
	indices := []int{}
	headers := []string{}
	for _, name := range names {
		if idx := f.ColumnIndex(name); idx != -1 {
			indices = append(indices, idx)
			headers = append(headers, name)
		}
	}
	out := &Frame{
		Headers:    headers,
		Rows:       make([][]string, len(f.Rows)),
		FileName:   f.FileName,
		Category:   f.Category,
		UploadedAt: f.UploadedAt,
	}
	for i := range f.Rows {
		row := make([]string, len(indices))
		for j, idx := range indices {
			row[j] = f.Cell(i, idx)
		}
		out.Rows[i] = row
	}
	return out
}

// Head returns at most n rows as maps keyed by header, for JSON previews.
func (f *Frame) Head(n int) []map[string]string {
	if n > len(f.Rows) {
		n = len(f.Rows)
	}
	out := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		row := make(map[string]string, len(f.Headers))
		for j, h := range f.Headers {
			row[h] = f.Cell(i, j)
		}
		out[i] = row
	}
	return out
}

// FindSiteColumn returns the column carrying site names, checking the known
// spellings in priority order. Empty string when none is present.
func (f *Frame) FindSiteColumn() string {
	for _, name := range []string{"Site_Name", "site_name", "SITE_NAME", "site"} {
		if f.HasColumn(name) {
			return name
		}
	}
	return ""
}
