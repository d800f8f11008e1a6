package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/a20121248/network-dashboard/internal/dataset"
)

const (
	// UploadTimeLayout is the fixed textual format of the monitoring
	// platform's timestamp exports, e.g. "Aug 18, 2025 06:00:00".
	UploadTimeLayout = "Jan 2, 2006 15:04:05"

	// CanonicalTimeLayout is what parsed timestamp columns are rewritten to.
	CanonicalTimeLayout = "2006-01-02 15:04:05"

	// ActivationDateLayout is the day-first format of provisioning
	// activation dates, e.g. "10/04/2024".
	ActivationDateLayout = "02/01/2006"
)

// CleanDateString strips the decorative " @ " separator and the ".000"
// millisecond suffix from a raw timestamp string. Missing markers map to "".
func CleanDateString(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return ""
	}
	s = strings.ReplaceAll(s, " @ ", " ")
	s = strings.ReplaceAll(s, ".000", "")
	return strings.TrimSpace(s)
}

// ParseDateTimeColumn parses a timestamp column against one fixed layout.
// Success means at least one row parsed; the column is then rewritten to
// canonical form (unparseable rows become empty) and, when derive is set,
// hour/date/day_of_week/month/year columns are attached. On failure the
// column is left untouched and false is returned, which callers use to
// suppress time-based sections. A wholly malformed column never fails the
// dataset.
func ParseDateTimeColumn(f *dataset.Frame, column, layout string, derive bool) bool {
	idx := f.ColumnIndex(column)
	if idx == -1 {
		return false
	}

	parsed := make([]time.Time, len(f.Rows))
	valid := make([]bool, len(f.Rows))
	validCount := 0
	for i := range f.Rows {
		cleaned := CleanDateString(f.Cell(i, idx))
		if cleaned == "" {
			continue
		}
		t, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		parsed[i] = t
		valid[i] = true
		validCount++
	}
	if validCount == 0 {
		return false
	}

	canonical := make([]string, len(f.Rows))
	for i := range f.Rows {
		if valid[i] {
			canonical[i] = parsed[i].Format(CanonicalTimeLayout)
		}
	}
	f.SetColumn(column, canonical)

	if derive {
		setOrAppend(f, "hour", derivedColumn(parsed, valid, func(t time.Time) string {
			return strconv.Itoa(t.Hour())
		}))
		setOrAppend(f, "date", derivedColumn(parsed, valid, func(t time.Time) string {
			return t.Format("2006-01-02")
		}))
		setOrAppend(f, "day_of_week", derivedColumn(parsed, valid, func(t time.Time) string {
			return t.Weekday().String()
		}))
		setOrAppend(f, "month", derivedColumn(parsed, valid, func(t time.Time) string {
			return strconv.Itoa(int(t.Month()))
		}))
		setOrAppend(f, "year", derivedColumn(parsed, valid, func(t time.Time) string {
			return strconv.Itoa(t.Year())
		}))
	}

	deriveDuration(f)
	return true
}

// Timestamps reads a canonicalized timestamp column back as time values
// with a per-row validity mask.
func Timestamps(f *dataset.Frame, column string) ([]time.Time, []bool) {
	idx := f.ColumnIndex(column)
	if idx == -1 {
		return nil, nil
	}
	values := make([]time.Time, len(f.Rows))
	valid := make([]bool, len(f.Rows))
	for i := range f.Rows {
		cell := f.Cell(i, idx)
		if cell == "" {
			continue
		}
		t, err := time.Parse(CanonicalTimeLayout, cell)
		if err != nil {
			continue
		}
		values[i] = t
		valid[i] = true
	}
	return values, valid
}

// deriveDuration attaches duration_minutes when both start_time and end_time
// are present and canonicalized. Rows missing either end stay empty rather
// than defaulting to a sentinel.
func deriveDuration(f *dataset.Frame) {
	starts, startOK := Timestamps(f, "start_time")
	ends, endOK := Timestamps(f, "end_time")
	if starts == nil || ends == nil || !anyTrue(startOK) || !anyTrue(endOK) {
		return
	}
	values := make([]string, len(f.Rows))
	for i := range f.Rows {
		if startOK[i] && endOK[i] {
			minutes := ends[i].Sub(starts[i]).Minutes()
			values[i] = strconv.FormatFloat(minutes, 'f', -1, 64)
		}
	}
	setOrAppend(f, "duration_minutes", values)
}

func derivedColumn(parsed []time.Time, valid []bool, format func(time.Time) string) []string {
	values := make([]string, len(parsed))
	for i := range parsed {
		if valid[i] {
			values[i] = format(parsed[i])
		}
	}
	return values
}

func setOrAppend(f *dataset.Frame, name string, values []string) {
	if f.HasColumn(name) {
		f.SetColumn(name, values)
		return
	}
	f.AppendColumn(name, values)
}

func anyTrue(mask []bool) bool {
	for _, v := range mask {
		if v {
			return true
		}
	}
	return false
}
