// Package export writes transcription views to XLSX workbooks and reads them
// back.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"voice-transcribe-go/internal/transcription"
)

// SheetName is the worksheet holding the exported records.
const SheetName = "Transcriptions"

// ContentType is the media type of an exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Header is the first row of the exported sheet.
var Header = []string{"ID", "Audio File", "Transcribed Text", "Created At"}

var colWidths = []float64{8, 32, 80, 26}

// WriteXLSX writes views as one row each, in the given order, below Header.
func WriteXLSX(w io.Writer, views []transcription.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	for i, width := range colWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	head := make([]interface{}, len(Header))
	for i, h := range Header {
		head[i] = h
	}
	if err := sw.SetRow("A1", head, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, v := range views {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			v.ID,
			v.AudioFileName,
			v.TranscribedText,
			v.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", v.ID, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ReadXLSX parses a workbook produced by WriteXLSX. Columns are located by
// header name, so reordered columns are accepted.
func ReadXLSX(r io.Reader) ([]transcription.View, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("missing header row")
	}

	idx, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]transcription.View, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		cell := func(col int) string {
			if col < len(row) {
				return row[col]
			}
			return ""
		}

		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(cell(idx[0])), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad id: %w", line, err)
		}
		created, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(cell(idx[3])))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad created at: %w", line, err)
		}
		out = append(out, transcription.View{
			ID:              id,
			AudioFileName:   cell(idx[1]),
			TranscribedText: cell(idx[2]),
			CreatedAt:       created,
		})
	}
	return out, nil
}

// columnIndex maps each Header entry to its position in the header row.
func columnIndex(header []string) ([]int, error) {
	idx := make([]int, len(Header))
	for i, want := range Header {
		idx[i] = -1
		for j, got := range header {
			if strings.EqualFold(strings.TrimSpace(got), want) {
				idx[i] = j
				break
			}
		}
		if idx[i] == -1 {
			return nil, fmt.Errorf("missing column %q", want)
		}
	}
	return idx, nil
}
