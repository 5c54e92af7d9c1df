package report

import (
	"fmt"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"newsnexus/pkg/util"
)

const (
	pdfMarginMM   = 18 // roughly the 50pt margin of the delivered documents
	pdfFontSize   = 12
	pdfLineHeight = 5
	pdfFieldGap   = 6
)

// documentFields is the fixed field order of a report document.
var documentFields = []struct {
	label string
	value func(Row) string
}{
	{"Ref #", func(r Row) string { return r.RefNumber }},
	{"Submitted", func(r Row) string { return r.Submitted }},
	{"Headline", func(r Row) string { return r.Headline }},
	{"Publication", func(r Row) string { return r.Publication }},
	{"Date Published", func(r Row) string { return r.DatePublished }},
	{"State", func(r Row) string { return r.State }},
	{"Text", func(r Row) string { return r.Text }},
}

// PDFRenderer renders one single-page PDF per report row.
type PDFRenderer struct{}

// RenderAll writes <refNumber>.pdf for every row into docDir, creating the
// directory if needed. Rendering is fail-fast: it stops at the first row
// that fails and the returned error names that row's reference number.
func (PDFRenderer) RenderAll(docDir string, rows []Row) error {
	if err := util.EnsureDir(docDir); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}
	for _, row := range rows {
		if err := renderDocument(docDir, row); err != nil {
			return fmt.Errorf("render %s: %w", row.RefNumber, err)
		}
	}
	return nil
}

func renderDocument(docDir string, row Row) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginMM, pdfMarginMM, pdfMarginMM)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, field := range documentFields {
		if i != 0 {
			pdf.Ln(pdfFieldGap)
		}
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.Write(pdfLineHeight, tr(field.label+" : "))
		pdf.SetFont("Helvetica", "", pdfFontSize)
		pdf.Write(pdfLineHeight, tr(field.value(row)))
		pdf.Ln(pdfLineHeight)
	}

	return pdf.OutputFileAndClose(filepath.Join(docDir, row.RefNumber+".pdf"))
}
