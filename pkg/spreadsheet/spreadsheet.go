// Package spreadsheet reads product sheets and writes report workbooks (.xlsx).
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ProductRow is one data row of a product import sheet. Values are the raw
// cell text; Line is the 1-based row number in the sheet.
type ProductRow struct {
	Line     int
	Name     string
	Category string
	Price    string
	Barcode  string
	HSN      string
	CGST     string
	SGST     string
}

var productColumns = map[string]string{
	"name":     "name",
	"product":  "name",
	"category": "category",
	"price":    "price",
	"rate":     "price",
	"barcode":  "barcode",
	"hsn":      "hsn",
	"hsn code": "hsn",
	"cgst":     "cgst",
	"cgst %":   "cgst",
	"sgst":     "sgst",
	"sgst %":   "sgst",
}

var requiredProductColumns = []string{"name", "price", "barcode"}

// ReadProducts parses the first sheet of an xlsx workbook. The first row is a
// header; columns are matched by name, case-insensitively, in any order.
// Blank rows are skipped.
func ReadProducts(r io.Reader) ([]ProductRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet: sheet %q is empty", sheets[0])
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		if field, ok := productColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, seen := index[field]; !seen {
				index[field] = i
			}
		}
	}
	var missing []string
	for _, c := range requiredProductColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("spreadsheet: missing columns: %s", strings.Join(missing, ", "))
	}

	cell := func(row []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]ProductRow, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		out = append(out, ProductRow{
			Line:     n + 2,
			Name:     cell(row, "name"),
			Category: cell(row, "category"),
			Price:    cell(row, "price"),
			Barcode:  cell(row, "barcode"),
			HSN:      cell(row, "hsn"),
			CGST:     cell(row, "cgst"),
			SGST:     cell(row, "sgst"),
		})
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Sheet is one worksheet of a generated workbook.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
	// Widths sets column widths by index; missing entries keep the default.
	Widths []float64
}

// Write renders sheets into a workbook and writes it to w. Header rows are bold
// and frozen.
func Write(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("spreadsheet: nothing to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return err
		}
		if err := writeSheet(f, s, bold); err != nil {
			return fmt.Errorf("spreadsheet: sheet %q: %w", s.Name, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int) error {
	header := make([]interface{}, len(s.Headers))
	for i, h := range s.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return err
	}
	if len(s.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(s.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(s.Name, "A1", last, headerStyle); err != nil {
			return err
		}
		if err := f.SetPanes(s.Name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}

	for i, row := range s.Rows {
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(s.Name, start, &r); err != nil {
			return err
		}
	}

	for i, width := range s.Widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.Name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}
