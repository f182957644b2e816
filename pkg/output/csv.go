package output

import (
	"encoding/csv"
	"io"
)

// BOM lets spreadsheet programs detect UTF-8 and render accents correctly.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSink writes a UTF-8 CSV with a byte order mark and a header row.
type CSVSink struct{}

func (CSVSink) Ext() string { return "csv" }

func (CSVSink) Write(w io.Writer, records []Record) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
