// Package export turns the backend's CSV exports into files for the user.
// The backend writes ;-delimited UTF-8 with a byte order mark so that
// spreadsheet programs pick the right encoding.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	bom          = "\uFEFF"
	defaultSheet = "Sheet1"
	maxColWidth  = 60
)

// ErrEmpty is returned for an export without a header row.
var ErrEmpty = errors.New("export is empty")

// ParseCSV decodes a backend export into rows. The BOM, if any, is dropped.
func ParseCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte(bom))
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return rows, nil
}

// WriteCSV writes rows in the backend's own format.
func WriteCSV(w io.Writer, rows [][]string) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes rows as a single-sheet workbook. The first row is the
// header: bold, frozen and filterable. Integer cells are stored as numbers.
func WriteXLSX(w io.Writer, sheet string, rows [][]string) (err error) {
	if len(rows) == 0 {
		return ErrEmpty
	}
	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	widths := make([]int, 0, len(rows[0]))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = cellValue(v, i == 0)
			if j >= len(widths) {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(v); n > widths[j] {
				widths[j] = n
			}
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	if err := styleHeader(f, sheet, len(rows[0]), len(rows)); err != nil {
		return err
	}
	for j, width := range widths {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return fmt.Errorf("column %d: %w", j+1, err)
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		if err := f.SetColWidth(sheet, col, col, float64(width+2)); err != nil {
			return fmt.Errorf("column %s width: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// CSVToXLSX converts a backend export straight to a workbook.
func CSVToXLSX(w io.Writer, sheet string, data []byte) error {
	rows, err := ParseCSV(data)
	if err != nil {
		return err
	}
	return WriteXLSX(w, sheet, rows)
}

func styleHeader(f *excelize.File, sheet string, cols, rows int) error {
	if cols == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E3F2FD"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if rows > 1 {
		bottom, err := excelize.CoordinatesToCellName(cols, rows)
		if err != nil {
			return fmt.Errorf("filter range: %w", err)
		}
		if err := f.AutoFilter(sheet, "A1:"+bottom, nil); err != nil {
			return fmt.Errorf("filter: %w", err)
		}
	}
	return nil
}

func cellValue(v string, header bool) any {
	if header {
		return v
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return v
}
