package report

import (
	"context"
	"time"
)

// ArticleSnapshot is the read-only projection of an approved article taken
// at the start of a run. Later edits to the underlying article do not
// change a report that has already been generated.
type ArticleSnapshot struct {
	ArticleID         uint
	Headline          string
	Publication       string
	DatePublished     string
	StateAbbreviation string
	Text              string
	URL               string
	Notes             string
}

// Row is one line of the generated report: a snapshot plus the values
// assigned during the run.
type Row struct {
	RefNumber     string
	Submitted     string
	Headline      string
	Publication   string
	DatePublished string
	State         string
	Text          string
}

// Linkage ties one article to the report being generated.
type Linkage struct {
	ArticleID       uint
	ReferenceNumber string
}

// Store is the persistence surface the pipeline consumes. Implementations
// must make CreateLinkages all-or-nothing: a failure leaves zero rows.
type Store interface {
	CreateReport(ctx context.Context, userID uint) (uint, error)
	SelectApprovedArticles(ctx context.Context, articleIDs []uint) ([]ArticleSnapshot, error)
	CreateLinkages(ctx context.Context, reportID uint, linkages []Linkage) error
	SaveReportArchiveName(ctx context.Context, reportID uint, filename string) error
}

// DocumentRenderer produces one document per row inside docDir.
type DocumentRenderer interface {
	RenderAll(docDir string, rows []Row) error
}

// TableExporter writes the tabular summary for one run into dir and
// returns the generated filename.
type TableExporter interface {
	Export(dir string, stamp time.Time, rows []Row) (string, error)
}

// Archiver bundles the table file and the document directory into one
// archive. Cleanup of the sources happens only after the archive is fully
// written; a cleanup failure is returned separately as a non-fatal warning.
type Archiver interface {
	Bundle(outputDir, archiveFilename, tableFilename, docDir string) (cleanupWarning error, err error)
}
