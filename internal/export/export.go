// Package export renders frames to downloadable CSV and XLSX payloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/a20121248/network-dashboard/internal/dataset"
)

// Sheet pairs a worksheet name with the frame it renders.
type Sheet struct {
	Name  string
	Frame *dataset.Frame
}

// Filename builds a timestamped attachment name, e.g.
// "averias_filtradas_20250818_0600.csv".
func Filename(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_1504"), ext)
}

// WriteCSV streams a frame as semicolon-delimited CSV, matching the upload
// format so exports round-trip.
func WriteCSV(w io.Writer, f *dataset.Frame) error {
	cw := csv.NewWriter(w)
	cw.Comma = dataset.Separator
	if err := cw.Write(f.Headers); err != nil {
		return fmt.Errorf("writing headers: %w", err)
	}
	for i := range f.Rows {
		record := make([]string, len(f.Headers))
		for j := range f.Headers {
			record[j] = f.Cell(i, j)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// BuildXLSX creates a workbook with one worksheet per sheet, headers in the
// first row. The default "Sheet1" is renamed to carry the first sheet.
func BuildXLSX(sheets []Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets to write")
	}
	wb := excelize.NewFile()
	for i, sheet := range sheets {
		name := sheet.Name
		if i == 0 {
			if err := wb.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("renaming first sheet: %w", err)
			}
		} else {
			if _, err := wb.NewSheet(name); err != nil {
				return nil, fmt.Errorf("adding sheet %s: %w", name, err)
			}
		}
		if err := writeSheet(wb, name, sheet.Frame); err != nil {
			return nil, err
		}
	}
	return wb, nil
}

// WriteXLSX builds the workbook and streams it to w.
func WriteXLSX(w io.Writer, sheets []Sheet) error {
	wb, err := BuildXLSX(sheets)
	if err != nil {
		return err
	}
	defer wb.Close()
	return wb.Write(w)
}

func writeSheet(wb *excelize.File, name string, f *dataset.Frame) error {
	header := make([]interface{}, len(f.Headers))
	for i, h := range f.Headers {
		header[i] = h
	}
	if err := wb.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing headers of %s: %w", name, err)
	}
	for i := range f.Rows {
		row := make([]interface{}, len(f.Headers))
		for j := range f.Headers {
			row[j] = f.Cell(i, j)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing row %d of %s: %w", i, name, err)
		}
		if err := wb.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i, name, err)
		}
	}
	return nil
}
