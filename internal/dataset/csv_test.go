package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseCSV(t *testing.T) {
	raw := "site;alarm_id;start_time\nS1;A1;Aug 18, 2025 @ 06:00:00.000\nS2;A2;Aug 18, 2025 @ 07:00:00.000\n"
	f, err := ParseCSV(strings.NewReader(raw), "averias.csv")
	require.NoError(t, err)

	// start_time is moved to the front during cleanup.
	assert.Equal(t, []string{"start_time", "site", "alarm_id"}, f.Headers)
	require.Len(t, f.Rows, 2)
	assert.Equal(t, "S1", f.Cell(0, f.ColumnIndex("site")))
	assert.Equal(t, "averias.csv", f.FileName)
}

func TestParseCSVLatin1Fallback(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("site;región\nS1;AMAZONAS PERÚ\n")
	require.NoError(t, err)

	f, parseErr := ParseCSV(strings.NewReader(encoded), "proyectos.csv")
	require.NoError(t, parseErr)
	assert.Equal(t, []string{"site", "región"}, f.Headers)
	assert.Equal(t, "AMAZONAS PERÚ", f.Cell(0, 1))
}

func TestParseCSVDropsDuplicateStartTime(t *testing.T) {
	raw := "alarm_id;start_time;start_time.1;end_time\nA1;t1;t1dup;t2\n"
	f, err := ParseCSV(strings.NewReader(raw), "averias.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"start_time", "end_time", "alarm_id"}, f.Headers)
	assert.Equal(t, "t1", f.Cell(0, 0))
	assert.Equal(t, "t2", f.Cell(0, 1))
	assert.Equal(t, "A1", f.Cell(0, 2))
}

func TestParseCSVBOMHeader(t *testing.T) {
	raw := "\uFEFFsite;value\nS1;10\n"
	f, err := ParseCSV(strings.NewReader(raw), "config.csv")
	require.NoError(t, err)
	assert.Equal(t, "site", f.Headers[0])
}

func TestParseCSVRaggedRows(t *testing.T) {
	raw := "a;b;c\n1;2;3\n4;5\n"
	f, err := ParseCSV(strings.NewReader(raw), "config.csv")
	require.NoError(t, err)
	require.Len(t, f.Rows, 2)
	assert.Equal(t, "", f.Cell(1, 2))
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), "empty.csv")
	assert.Error(t, err)
}
