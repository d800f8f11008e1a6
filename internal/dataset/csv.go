package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Separator is the field delimiter of the operator's CSV exports.
const Separator = ';'

// ParseCSV reads an uploaded CSV into a Frame. Cells stay string-typed. The
// bytes are decoded as UTF-8 and re-decoded as Latin-1 when they are not
// valid UTF-8; a parse failure after both attempts is surfaced per file.
func ParseCSV(r io.Reader, filename string) (*Frame, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if !utf8.Valid(raw) {
		decoded, decErr := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if decErr != nil {
			return nil, fmt.Errorf("decoding %s: %w", filename, decErr)
		}
		raw = decoded
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = Separator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading headers of %s: %w", filename, err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}

	frame := &Frame{
		Headers:    headers,
		FileName:   filename,
		UploadedAt: time.Now(),
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip malformed rows, keep the rest of the file.
			continue
		}
		frame.Rows = append(frame.Rows, record)
	}

	cleanAndReorderColumns(frame)
	return frame, nil
}

// cleanAndReorderColumns drops the duplicated start_time.1 column that the
// export tool emits and moves start_time / end_time to the front.
func cleanAndReorderColumns(f *Frame) {
	if idx := columnIndexFold(f, "start_time.1"); idx != -1 {
		dropColumn(f, idx)
	}

	order := []int{}
	used := make(map[int]bool)
	for _, name := range []string{"start_time", "end_time"} {
		if idx := columnIndexFold(f, name); idx != -1 {
			order = append(order, idx)
			used[idx] = true
		}
	}
	if len(order) == 0 {
		return
	}
	for i := range f.Headers {
		if !used[i] {
			order = append(order, i)
		}
	}
	reorderColumns(f, order)
}

func columnIndexFold(f *Frame, name string) int {
	for i, h := range f.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func dropColumn(f *Frame, idx int) {
	f.Headers = append(f.Headers[:idx], f.Headers[idx+1:]...)
	for i, row := range f.Rows {
		if idx < len(row) {
			f.Rows[i] = append(row[:idx], row[idx+1:]...)
		}
	}
}

func reorderColumns(f *Frame, order []int) {
	headers := make([]string, len(order))
	for i, idx := range order {
		headers[i] = f.Headers[idx]
	}
	for r, row := range f.Rows {
		newRow := make([]string, len(order))
		for i, idx := range order {
			if idx < len(row) {
				newRow[i] = row[idx]
			}
		}
		f.Rows[r] = newRow
	}
	f.Headers = headers
}
