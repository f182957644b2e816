package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by NewSink for unknown format names.
var ErrUnsupportedFormat = errors.New("unsupported output format")

const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Record is one output row: the file name and the fields read from it.
type Record struct {
	File    string `json:"archivo"`
	Product string `json:"producto"`
	Unit    string `json:"unidad"`
	Price   string `json:"precio"`
	Status  string `json:"estado,omitempty"`
	Error   string `json:"error,omitempty"`
}

// columns is the header row shared by the tabular sinks.
var columns = []string{"archivo", "producto", "unidad", "precio"}

func (r Record) row() []string {
	return []string{r.File, r.Product, r.Unit, r.Price}
}

// Sink serialises a batch of records.
type Sink interface {
	Write(w io.Writer, records []Record) error
	// Ext is the file extension without the dot.
	Ext() string
}

// NewSink returns the sink for format: csv, excel or json.
func NewSink(format string) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSink{}, nil
	case "excel", "xlsx":
		return ExcelSink{}, nil
	case "json":
		return JSONSink{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// FileName is the results file a sink writes inside dir.
func FileName(dir string, s Sink) string {
	return filepath.Join(dir, "resultados."+s.Ext())
}

// WriteFile writes records to dir/resultados.<ext>, replacing any previous
// file only once the new one is complete.
func WriteFile(dir string, s Sink, records []Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := FileName(dir, s)
	tmp, err := os.CreateTemp(dir, ".resultados-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if err := s.Write(tmp, records); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", s.Ext(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}
