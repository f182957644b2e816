package output

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet ExcelSink writes to.
const SheetName = "resultados"

// ExcelSink writes an xlsx workbook with a single sheet.
type ExcelSink struct{}

func (ExcelSink) Ext() string { return "xlsx" }

func (ExcelSink) Write(w io.Writer, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, "A1", &columns); err != nil {
		return err
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := r.row()
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetName, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "D", 16); err != nil {
		return err
	}
	return f.Write(w)
}
