package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"newsnexus/pkg/util"
)

// tableHeaders is the fixed column order of the tabular export.
var tableHeaders = []string{"Ref #", "Submitted", "Headline", "Publication", "Date Published", "State", "Text"}

func (r Row) record() []string {
	return []string{r.RefNumber, r.Submitted, r.Headline, r.Publication, r.DatePublished, r.State, r.Text}
}

// NewTableExporter picks the exporter for the configured format.
func NewTableExporter(format string) (TableExporter, error) {
	switch format {
	case "", "xlsx":
		return XLSXExporter{}, nil
	case "csv":
		return CSVExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// XLSXExporter writes the report table as a spreadsheet.
type XLSXExporter struct{}

func (XLSXExporter) Export(dir string, stamp time.Time, rows []Row) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", err
	}

	for i, header := range tableHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return "", err
		}
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row.record() {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return "", err
			}
		}
	}

	for i := 1; i <= len(tableHeaders); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		width := 20.0
		if i == len(tableHeaders) {
			width = 60.0 // Text column
		}
		if err := f.SetColWidth(sheet, colName, colName, width); err != nil {
			return "", err
		}
	}

	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", err
	}

	filename := "report_" + util.TimestampForFilename(stamp) + ".xlsx"
	if err := f.SaveAs(filepath.Join(dir, filename)); err != nil {
		return "", err
	}
	return filename, nil
}

// CSVExporter writes the report table as UTF-8 CSV with a byte-order
// marker so spreadsheet viewers detect the encoding.
type CSVExporter struct{}

func (CSVExporter) Export(dir string, stamp time.Time, rows []Row) (string, error) {
	filename := "report_" + util.TimestampForFilename(stamp) + ".csv"
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		f.Close()
		return "", err
	}

	w := csv.NewWriter(f)
	if err := w.Write(tableHeaders); err != nil {
		f.Close()
		return "", err
	}
	for _, row := range rows {
		if err := w.Write(row.record()); err != nil {
			f.Close()
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", err
	}

	if err := f.Close(); err != nil {
		return "", err
	}
	return filename, nil
}
