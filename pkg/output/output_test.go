package output_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"feriaocr/pkg/output"
)

var sample = []output.Record{
	{File: "a.jpg", Product: "cebolla", Unit: "kilo", Price: "1200", Status: output.StatusOK},
	{File: "b.png", Product: "sandía", Status: output.StatusOK},
	{File: "c.jpg", Status: output.StatusError, Error: "decode failed"},
}

func TestNewSink(t *testing.T) {
	for format, ext := range map[string]string{"csv": "csv", "excel": "xlsx", "JSON": "json"} {
		s, err := output.NewSink(format)
		require.NoError(t, err, format)
		assert.Equal(t, ext, s.Ext())
	}
	_, err := output.NewSink("xml")
	assert.ErrorIs(t, err, output.ErrUnsupportedFormat)
}

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.CSVSink{}.Write(&buf, sample))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, output.BOM))

	rows, err := csv.NewReader(bytes.NewReader(raw[len(output.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"archivo", "producto", "unidad", "precio"}, rows[0])
	assert.Equal(t, []string{"a.jpg", "cebolla", "kilo", "1200"}, rows[1])
	assert.Equal(t, []string{"b.png", "sandía", "", ""}, rows[2])
	assert.Equal(t, []string{"c.jpg", "", "", ""}, rows[3])
}

func TestExcelSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.ExcelSink{}.Write(&buf, sample))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(output.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"archivo", "producto", "unidad", "precio"}, rows[0])
	assert.Equal(t, []string{"a.jpg", "cebolla", "kilo", "1200"}, rows[1])
	assert.Equal(t, "sandía", rows[2][1])
}

func TestJSONSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.JSONSink{}.Write(&buf, sample))

	var got []map[string]string
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "cebolla", got[0]["producto"])
	assert.Equal(t, "1200", got[0]["precio"])
	assert.Equal(t, "error", got[2]["estado"])

	buf.Reset()
	require.NoError(t, output.JSONSink{}.Write(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := output.WriteFile(dir, output.CSVSink{}, sample[:1])
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "resultados.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a.jpg,cebolla,kilo,1200")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
