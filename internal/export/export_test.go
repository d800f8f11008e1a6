package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a20121248/network-dashboard/internal/dataset"
)

func exportFrame() *dataset.Frame {
	return &dataset.Frame{
		Headers: []string{"start_time", "site", "alarm_id"},
		Rows: [][]string{
			{"2025-08-18 06:00:00", "S1", "A1"},
			{"2025-08-18 07:00:00", "S2", "A2"},
		},
	}
}

func TestFilename(t *testing.T) {
	name := Filename("averias_filtradas", "csv")
	assert.True(t, strings.HasPrefix(name, "averias_filtradas_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
	// prefix + "_" + yyyymmdd_hhmm + ".csv"
	assert.Len(t, name, len("averias_filtradas_")+13+len(".csv"))
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportFrame()))

	r := csv.NewReader(&buf)
	r.Comma = dataset.Separator
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"start_time", "site", "alarm_id"}, records[0])
	assert.Equal(t, []string{"2025-08-18 06:00:00", "S1", "A1"}, records[1])
}

func TestWriteCSVPadsRaggedRows(t *testing.T) {
	f := &dataset.Frame{
		Headers: []string{"a", "b"},
		Rows:    [][]string{{"1"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, f))

	r := csv.NewReader(&buf)
	r.Comma = dataset.Separator
	records, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", ""}, records[1])
}

func TestWriteXLSXReopens(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, []Sheet{
		{Name: "Averias_Filtradas", Frame: exportFrame()},
		{Name: "Averias_Activas", Frame: exportFrame()},
	})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Averias_Filtradas", "Averias_Activas"}, wb.GetSheetList())

	rows, err := wb.GetRows("Averias_Filtradas")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"start_time", "site", "alarm_id"}, rows[0])
	assert.Equal(t, "S1", rows[1][1])
}

func TestBuildXLSXNoSheets(t *testing.T) {
	_, err := BuildXLSX(nil)
	assert.Error(t, err)
}
