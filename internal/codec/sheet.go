package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/contactbook/internal/models"
)

// SheetName is the worksheet name written by WriteXLSX.
const SheetName = "Contacts"

var errNoHeader = errors.New("missing header row")

// ReadXLSX reads the first worksheet of a workbook. The first row is the
// header; the remaining rows are returned as data.
func ReadXLSX(r io.Reader) (header []string, rows [][]string, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, &models.ParseError{Source: "xlsx", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &models.ParseError{Source: "xlsx", Err: errors.New("workbook has no sheets")}
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, &models.ParseError{Source: "xlsx", Ref: sheets[0], Err: err}
	}
	if err := restoreDates(f, sheets[0], all); err != nil {
		return nil, nil, &models.ParseError{Source: "xlsx", Ref: sheets[0], Err: err}
	}
	return splitHeader("xlsx", all)
}

// restoreDates replaces the displayed text of date-formatted numeric cells
// with YYYY-MM-DD. Display formats such as "mm-dd-yy" are locale dependent
// and would not parse as birthdays.
func restoreDates(f *excelize.File, sheet string, rows [][]string) error {
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	props, err := f.GetWorkbookProps()
	if err != nil {
		return err
	}
	date1904 := props.Date1904 != nil && *props.Date1904

	for i, row := range rows {
		if i >= len(raw) {
			break
		}
		for j, shown := range row {
			if j >= len(raw[i]) || raw[i][j] == shown {
				continue
			}
			serial, err := strconv.ParseFloat(raw[i][j], 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return err
			}
			style, err := f.GetStyle(styleID)
			if err != nil || !isDateStyle(style) {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			rows[i][j] = t.Format(isoDate)
		}
	}
	return nil
}

// isDateStyle reports whether a cell style formats numbers as dates.
func isDateStyle(style *excelize.Style) bool {
	switch n := style.NumFmt; {
	case n >= 14 && n <= 17, n == 22, n >= 27 && n <= 36, n >= 50 && n <= 58:
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}
	// Quoted literals and [bracketed] sections are not format codes.
	code := strings.ToLower(*style.CustomNumFmt)
	var b strings.Builder
	quoted, bracketed := false, false
	for _, r := range code {
		switch {
		case r == '"':
			quoted = !quoted
		case r == '[' && !quoted:
			bracketed = true
		case r == ']' && !quoted:
			bracketed = false
		case !quoted && !bracketed:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "yd")
}

// WriteXLSX writes header and rows to a single-sheet workbook.
func WriteXLSX(w io.Writer, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for i, row := range append([][]string{header}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadCSV reads comma-separated rows; the first is the header. Rows may
// have differing lengths.
func ReadCSV(r io.Reader) (header []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, &models.ParseError{Source: "csv", Err: err}
	}
	if len(all) > 0 && len(all[0]) > 0 {
		// Spreadsheet tools like to prepend a BOM.
		all[0][0] = strings.TrimPrefix(all[0][0], "\ufeff")
	}
	return splitHeader("csv", all)
}

// WriteCSV writes header and rows as CSV.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

func splitHeader(source string, all [][]string) ([]string, [][]string, error) {
	if len(all) == 0 {
		return nil, nil, &models.ParseError{Source: source, Err: errNoHeader}
	}
	header := all[0]
	named := false
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			named = true
			break
		}
	}
	if !named {
		return nil, nil, &models.ParseError{Source: source, Ref: "row 1", Err: errNoHeader}
	}
	return header, all[1:], nil
}
