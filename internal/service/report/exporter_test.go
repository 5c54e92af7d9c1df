package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var exportStamp = time.Date(2025, 4, 18, 15, 30, 0, 0, time.UTC)

func sampleRows() []Row {
	return []Row{
		{
			RefNumber:     "250418001",
			Submitted:     "2025-04-18",
			Headline:      `Recall, "immediate" — heaters`,
			Publication:   "Daily Ledger",
			DatePublished: "2025-04-15",
			State:         "OH",
			Text:          "Línea uno\nline two",
		},
		{
			RefNumber: "250418002",
			Submitted: "2025-04-18",
			Headline:  "Second article",
		},
	}
}

func TestXLSXExporter_Export(t *testing.T) {
	dir := t.TempDir()

	filename, err := XLSXExporter{}.Export(dir, exportStamp, sampleRows())
	require.NoError(t, err)
	assert.Equal(t, "report_20250418-153000.xlsx", filename)

	f, err := excelize.OpenFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, tableHeaders, rows[0])
	assert.Equal(t, "250418001", rows[1][0])
	assert.Equal(t, `Recall, "immediate" — heaters`, rows[1][2])
	assert.Equal(t, "Línea uno\nline two", rows[1][6])
	// Row order matches input order
	assert.Equal(t, "250418002", rows[2][0])
}

func TestXLSXExporter_HeadersOnly(t *testing.T) {
	dir := t.TempDir()

	filename, err := XLSXExporter{}.Export(dir, exportStamp, nil)
	require.NoError(t, err)

	f, err := excelize.OpenFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, tableHeaders, rows[0])
}

func TestCSVExporter_Export(t *testing.T) {
	dir := t.TempDir()

	filename, err := CSVExporter{}.Export(dir, exportStamp, sampleRows())
	require.NoError(t, err)
	assert.Equal(t, "report_20250418-153000.csv", filename)

	data, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "file should start with a UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, tableHeaders, records[0])
	assert.Equal(t, `Recall, "immediate" — heaters`, records[1][2])
	assert.Equal(t, "Línea uno\nline two", records[1][6])
	assert.Equal(t, "250418002", records[2][0])
}

func TestExport_MissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := XLSXExporter{}.Export(missing, exportStamp, sampleRows())
	assert.Error(t, err)

	_, err = CSVExporter{}.Export(missing, exportStamp, sampleRows())
	assert.Error(t, err)
}

func TestNewTableExporter(t *testing.T) {
	exp, err := NewTableExporter("")
	require.NoError(t, err)
	assert.IsType(t, XLSXExporter{}, exp)

	exp, err = NewTableExporter("csv")
	require.NoError(t, err)
	assert.IsType(t, CSVExporter{}, exp)

	_, err = NewTableExporter("pdf")
	assert.Error(t, err)
}
