package transfer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/OscarFredriksson/tire-logger/internal/record"
)

// maxSheetName is the sheet-name length limit of the XLSX format.
const maxSheetName = 31

// WriteXLSX writes one worksheet per table: a header row of column names
// followed by the rows. The workbook is an export only; it cannot be
// imported back.
func WriteXLSX(w io.Writer, doc *Document) error {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(doc.Tables))
	for i, t := range doc.Tables {
		sheet := sheetName(t.Name, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}

		columns := t.Columns
		if len(columns) == 0 && len(t.Rows) > 0 {
			columns = t.Rows[0].Names()
		}
		if len(columns) == 0 {
			continue
		}

		header := make([]any, len(columns))
		for j, c := range columns {
			header[j] = c
		}
		if err := setRow(f, sheet, 1, header); err != nil {
			return err
		}
		for j, r := range t.Rows {
			vals := make([]any, len(columns))
			for k, c := range columns {
				v, _ := r.Get(c)
				vals[k] = record.Any(v)
			}
			if err := setRow(f, sheet, j+2, vals); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	return nil
}

// sheetName truncates table to the sheet-name limit and adds a numeric
// suffix when the result is already in used. Sheet names compare
// case-insensitively.
func sheetName(table string, used map[string]bool) string {
	name := truncateRunes(table, maxSheetName)
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := "~" + strconv.Itoa(n)
		name = truncateRunes(table, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
