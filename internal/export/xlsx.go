package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"carteira/internal/summary"
)

// numFmtBRL is the excelize built-in "#,##0.00" format.
const numFmtBRL = 4

// WriteXLSX writes a workbook with the annual summary on the first sheet and
// one sheet per invoice.
func WriteXLSX(w io.Writer, a summary.Annual, invoices []summary.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtBRL})
	if err != nil {
		return fmt.Errorf("create number style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	annual := AnnualSheetName(a.Year)
	if err := f.SetSheetName("Sheet1", annual); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSheet(f, annual, AnnualRows(a), "B", "E", money, bold); err != nil {
		return err
	}

	used := map[string]int{annual: 1}
	for _, inv := range invoices {
		name := InvoiceSheetName(inv)
		if n := used[name]; n > 0 {
			used[name]++
			name = fmt.Sprintf("%s (%d)", name, n+1)
		} else {
			used[name] = 1
		}
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, InvoiceRows(inv), "E", "E", money, bold); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeSheet fills rows from A1, bolds the header and applies the money
// style to the columns fromCol..toCol below it.
func writeSheet(f *excelize.File, sheet string, rows [][]any, fromCol, toCol string, money, bold int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if len(rows) > 1 {
		last := fmt.Sprintf("%s%d", toCol, len(rows))
		if err := f.SetCellStyle(sheet, fromCol+"2", last, money); err != nil {
			return fmt.Errorf("style %s amounts: %w", sheet, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "E", 16); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	return nil
}
