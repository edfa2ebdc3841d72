// Package staging writes the expanded contract tables to Excel workbooks for
// human review and reads them back for upload. One workbook holds one table:
// a single sheet named after the destination table, a styled header row with
// the canonical column order, and one row per staged record.
//
// The round trip is lossless for review purposes: blank cells survive as
// empty strings and a header cell someone blanked out in Excel is replaced
// with a synthetic column_N name so the row maps stay addressable.
package staging

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	headerFillColor = "4472C4"
	minColumnWidth  = 10
	maxColumnWidth  = 50
)

// WriteTable writes a single-sheet workbook for one staged table at path.
// Columns defines the header order; a row may omit columns, which stage as
// blank cells.
func WriteTable(path, table string, columns []string, rows []map[string]any) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	if err := f.SetSheetName(defaultSheet, table); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(table, cell, col); err != nil {
			return err
		}
		widths[i] = len(col)
	}
	if len(columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		if err := f.SetCellStyle(table, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("apply header style: %w", err)
		}
	}

	for r, row := range rows {
		for c, col := range columns {
			v, ok := row[col]
			if !ok || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(table, cell, v); err != nil {
				return err
			}
			if l := len(fmt.Sprint(v)); l > widths[c] {
				widths[c] = l
			}
		}
	}

	for i := range columns {
		w := widths[i] + 2
		if w < minColumnWidth {
			w = minColumnWidth
		}
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(table, name, name, float64(w)); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// Table is the parsed form of one staged workbook.
type Table struct {
	// Sheet is the name of the sheet the rows came from, which by staging
	// convention is the destination table name.
	Sheet string
	// Columns is the header row. Blank header cells are replaced with
	// synthetic column_N names (1-based position).
	Columns []string
	// Rows holds the data rows keyed by column. Blank cells are present as
	// empty strings so a deliberately cleared value is distinguishable from
	// a column the sheet never had.
	Rows []map[string]string
}

// ParseWorkbook reads the first sheet of a staged workbook back into rows.
// The caller owns interpretation; all values come back as strings exactly as
// Excel renders them.
func ParseWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return parseFirstSheet(f)
}

// ParseWorkbookFile reads a staged workbook from disk.
func ParseWorkbookFile(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return parseFirstSheet(f)
}

func parseFirstSheet(f *excelize.File) (*Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(raw) == 0 {
		return &Table{Sheet: sheet}, nil
	}

	columns := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		columns[i] = h
	}

	rows := make([]map[string]string, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			// GetRows trims trailing empty cells; missing cells stage as
			// blanks like any other empty cell.
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return &Table{Sheet: sheet, Columns: columns, Rows: rows}, nil
}
