package report

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fakeStore struct {
	nextID       uint
	created      []uint
	snapshots    []ArticleSnapshot
	selectErr    error
	linkages     map[uint][]Linkage
	linkageErr   error
	archiveNames map[uint]string
	saveNameErr  error
}

func newFakeStore(snapshots ...ArticleSnapshot) *fakeStore {
	return &fakeStore{
		snapshots:    snapshots,
		linkages:     make(map[uint][]Linkage),
		archiveNames: make(map[uint]string),
	}
}

func (f *fakeStore) CreateReport(ctx context.Context, userID uint) (uint, error) {
	f.nextID++
	f.created = append(f.created, f.nextID)
	return f.nextID, nil
}

func (f *fakeStore) SelectApprovedArticles(ctx context.Context, articleIDs []uint) ([]ArticleSnapshot, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.snapshots, nil
}

func (f *fakeStore) CreateLinkages(ctx context.Context, reportID uint, linkages []Linkage) error {
	if f.linkageErr != nil {
		return f.linkageErr
	}
	f.linkages[reportID] = append([]Linkage(nil), linkages...)
	return nil
}

func (f *fakeStore) SaveReportArchiveName(ctx context.Context, reportID uint, filename string) error {
	if f.saveNameErr != nil {
		return f.saveNameErr
	}
	f.archiveNames[reportID] = filename
	return nil
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

type failingRenderer struct {
	failOn string
}

func (r failingRenderer) RenderAll(docDir string, rows []Row) error {
	for _, row := range rows {
		if row.RefNumber == r.failOn {
			return fmt.Errorf("render %s: boom", row.RefNumber)
		}
	}
	return nil
}

type stubBundler struct {
	warn   error
	err    error
	called bool
}

func (b *stubBundler) Bundle(outputDir, archiveFilename, tableFilename, docDir string) (error, error) {
	b.called = true
	return b.warn, b.err
}

var testClock = fixedClock{t: time.Date(2025, 4, 18, 15, 30, 0, 0, time.UTC)}

func testSnapshots() []ArticleSnapshot {
	return []ArticleSnapshot{
		{ArticleID: 11, Headline: "First", Publication: "Ledger", DatePublished: "2025-04-15", StateAbbreviation: "OH", Text: "one"},
		{ArticleID: 22, Headline: "Second", Publication: "Courier", DatePublished: "2025-04-16", Text: "two"},
		{ArticleID: 33, Headline: "Third", Publication: "Post", DatePublished: "2025-04-17", StateAbbreviation: "TX", Text: "three"},
	}
}

func defaultGenerator(outputDir string, store Store) *Generator {
	return NewGeneratorWithComponents(outputDir, store, PDFRenderer{}, XLSXExporter{}, ZipBundler{}, testClock, zap.NewNop())
}

func TestGenerator_Success(t *testing.T) {
	outputDir := t.TempDir()
	store := newFakeStore(testSnapshots()...)
	gen := defaultGenerator(outputDir, store)

	result, err := gen.Generate(context.Background(), 1, []uint{11, 22, 33})
	require.NoError(t, err)
	assert.Equal(t, uint(1), result.ReportID)
	assert.Equal(t, "report_bundle_1.zip", result.ArchiveFilename)
	assert.Equal(t, 3, result.ArticleCount)
	assert.NoError(t, result.CleanupWarning)

	// Linkage rows pin reference numbers in selection order
	require.Len(t, store.linkages[1], 3)
	assert.Equal(t, Linkage{ArticleID: 11, ReferenceNumber: "250418001"}, store.linkages[1][0])
	assert.Equal(t, Linkage{ArticleID: 22, ReferenceNumber: "250418002"}, store.linkages[1][1])
	assert.Equal(t, Linkage{ArticleID: 33, ReferenceNumber: "250418003"}, store.linkages[1][2])
	assert.Equal(t, "report_bundle_1.zip", store.archiveNames[1])

	// Intermediate files are gone, only the archive remains
	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "report_bundle_1.zip", entries[0].Name())

	assertArchiveRoundTrip(t, filepath.Join(outputDir, "report_bundle_1.zip"))
}

// assertArchiveRoundTrip checks that every reference number in the table
// matches exactly one document in the archive, and vice versa.
func assertArchiveRoundTrip(t *testing.T, archivePath string) {
	t.Helper()

	r, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer r.Close()

	var tableData []byte
	docs := make(map[string]bool)
	for _, f := range r.File {
		switch {
		case strings.HasSuffix(f.Name, ".xlsx"):
			rc, err := f.Open()
			require.NoError(t, err)
			tableData, err = io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
		case strings.HasPrefix(f.Name, ArchiveDocsDir+"/") && strings.HasSuffix(f.Name, ".pdf"):
			stem := strings.TrimSuffix(strings.TrimPrefix(f.Name, ArchiveDocsDir+"/"), ".pdf")
			docs[stem] = true
		}
	}
	require.NotNil(t, tableData, "archive should contain the table file at its root")

	xl, err := excelize.OpenReader(bytes.NewReader(tableData))
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows("Report")
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	tableRefs := make(map[string]bool)
	for _, row := range rows[1:] {
		tableRefs[row[0]] = true
	}
	assert.Equal(t, tableRefs, docs)
}

func TestGenerator_MissingStateRendersEmpty(t *testing.T) {
	outputDir := t.TempDir()
	store := newFakeStore(testSnapshots()...)
	gen := NewGeneratorWithComponents(outputDir, store, PDFRenderer{}, XLSXExporter{}, &stubBundler{}, testClock, zap.NewNop())

	_, err := gen.Generate(context.Background(), 1, []uint{11, 22, 33})
	require.NoError(t, err)

	// The stub bundler leaves the table on disk for inspection.
	xl, err := excelize.OpenFile(filepath.Join(outputDir, "report_20250418-153000.xlsx"))
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	stateCol := 5
	assert.Equal(t, "OH", rows[1][stateCol])
	// GetRows trims trailing empty cells, so the second row may be short.
	if len(rows[2]) > stateCol {
		assert.Equal(t, "", rows[2][stateCol])
	}
	assert.Equal(t, "TX", rows[3][stateCol])
}

func TestGenerator_EmptySelection(t *testing.T) {
	outputDir := t.TempDir()
	store := newFakeStore()
	gen := defaultGenerator(outputDir, store)

	result, err := gen.Generate(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ArticleCount)
	assert.Empty(t, store.linkages[1])
	assert.Equal(t, "report_bundle_1.zip", store.archiveNames[1])

	r, err := zip.OpenReader(filepath.Join(outputDir, result.ArchiveFilename))
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "report_20250418-153000.xlsx")
	assert.Contains(t, names, ArchiveDocsDir+"/")
	assert.Len(t, names, 2)
}

func TestGenerator_NotIdempotent(t *testing.T) {
	outputDir := t.TempDir()
	store := newFakeStore(testSnapshots()...)
	gen := defaultGenerator(outputDir, store)

	first, err := gen.Generate(context.Background(), 1, []uint{11, 22, 33})
	require.NoError(t, err)
	second, err := gen.Generate(context.Background(), 1, []uint{11, 22, 33})
	require.NoError(t, err)

	assert.NotEqual(t, first.ReportID, second.ReportID)
	assert.NotEqual(t, first.ArchiveFilename, second.ArchiveFilename)

	// Both archives exist independently and both linkage sets persist
	for _, res := range []*Result{first, second} {
		_, err := os.Stat(filepath.Join(outputDir, res.ArchiveFilename))
		assert.NoError(t, err)
		assert.Len(t, store.linkages[res.ReportID], 3)
	}
}

func TestGenerator_MissingOutputDirConfig(t *testing.T) {
	store := newFakeStore(testSnapshots()...)
	gen := defaultGenerator("", store)

	_, err := gen.Generate(context.Background(), 1, []uint{11})
	require.Error(t, err)

	step, ok := StepOf(err)
	require.True(t, ok)
	assert.Equal(t, StepConfiguration, step)

	// Raised before any repository writes
	assert.Empty(t, store.created)
	assert.Empty(t, store.linkages)
}

func TestGenerator_SelectionError(t *testing.T) {
	store := newFakeStore()
	store.selectErr = errors.New("db unreachable")
	gen := defaultGenerator(t.TempDir(), store)

	_, err := gen.Generate(context.Background(), 1, []uint{11})
	step, ok := StepOf(err)
	require.True(t, ok)
	assert.Equal(t, StepSelection, step)
	assert.Empty(t, store.linkages)
}

func TestGenerator_LinkageFailureWritesNoFiles(t *testing.T) {
	outputDir := t.TempDir()
	store := newFakeStore(testSnapshots()...)
	store.linkageErr = errors.New("insert failed")
	gen := defaultGenerator(outputDir, store)

	_, err := gen.Generate(context.Background(), 1, []uint{11, 22, 33})
	step, ok := StepOf(err)
	require.True(t, ok)
	assert.Equal(t, StepPersistence, step)

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "numbering failure must abort before any file is written")
}

func TestGenerator_RenderFailure(t *testing.T) {
	outputDir := t.TempDir()
	store := newFakeStore(testSnapshots()...)
	gen := NewGeneratorWithComponents(outputDir, store, failingRenderer{failOn: "250418002"}, XLSXExporter{}, ZipBundler{}, testClock, zap.NewNop())

	_, err := gen.Generate(context.Background(), 1, []uint{11, 22, 33})
	require.Error(t, err)

	step, ok := StepOf(err)
	require.True(t, ok)
	assert.Equal(t, StepRender, step)
	assert.Contains(t, err.Error(), "250418002")

	// Linkages were already pinned, but no archive and no archive name
	assert.Len(t, store.linkages[1], 3)
	assert.Empty(t, store.archiveNames)
	_, statErr := os.Stat(filepath.Join(outputDir, "report_bundle_1.zip"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerator_ArchiveFailure(t *testing.T) {
	store := newFakeStore(testSnapshots()...)
	bundler := &stubBundler{err: errors.New("disk full")}
	gen := NewGeneratorWithComponents(t.TempDir(), store, PDFRenderer{}, XLSXExporter{}, bundler, testClock, zap.NewNop())

	_, err := gen.Generate(context.Background(), 1, []uint{11, 22, 33})
	step, ok := StepOf(err)
	require.True(t, ok)
	assert.Equal(t, StepArchive, step)
	assert.True(t, bundler.called)
	assert.Empty(t, store.archiveNames, "failed runs must not record an archive name")
}

func TestGenerator_CleanupWarningStillSucceeds(t *testing.T) {
	store := newFakeStore(testSnapshots()...)
	bundler := &stubBundler{warn: errors.New("table file busy")}
	gen := NewGeneratorWithComponents(t.TempDir(), store, PDFRenderer{}, XLSXExporter{}, bundler, testClock, zap.NewNop())

	result, err := gen.Generate(context.Background(), 1, []uint{11, 22, 33})
	require.NoError(t, err)
	assert.Error(t, result.CleanupWarning)
	assert.Equal(t, "report_bundle_1.zip", store.archiveNames[1])
}
