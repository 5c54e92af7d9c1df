package report

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"newsnexus/internal/config"
	"newsnexus/pkg/util"
)

// Result is the success payload of one report run.
type Result struct {
	ReportID        uint
	ArchiveFilename string
	ArticleCount    int

	// CleanupWarning is non-nil when the archive was written but removing
	// the intermediate files failed. The run still counts as successful.
	CleanupWarning error
}

// Generator drives one report run: select snapshots, assign reference
// numbers, persist linkages, render documents, export the table, bundle
// the archive, write back the archive name. Each invocation creates a new
// report row; re-running with the same articles produces a second,
// independent report. Nothing is retried, and a failed run keeps its
// report and linkage rows for manual inspection.
type Generator struct {
	outputDir string
	store     Store
	renderer  DocumentRenderer
	exporter  TableExporter
	bundler   Archiver
	clock     Clock
	logger    *zap.Logger
}

// NewGenerator builds a Generator with the default components for cfg.
func NewGenerator(cfg config.ReportsConfig, store Store, logger *zap.Logger) (*Generator, error) {
	exporter, err := NewTableExporter(cfg.ExportFormat)
	if err != nil {
		return nil, err
	}
	clock, err := NewClock(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return &Generator{
		outputDir: cfg.Dir,
		store:     store,
		renderer:  PDFRenderer{},
		exporter:  exporter,
		bundler:   ZipBundler{},
		clock:     clock,
		logger:    logger,
	}, nil
}

// NewGeneratorWithComponents wires explicit components, used by tests and
// by callers that swap a single stage.
func NewGeneratorWithComponents(outputDir string, store Store, renderer DocumentRenderer, exporter TableExporter, bundler Archiver, clock Clock, logger *zap.Logger) *Generator {
	return &Generator{
		outputDir: outputDir,
		store:     store,
		renderer:  renderer,
		exporter:  exporter,
		bundler:   bundler,
		clock:     clock,
		logger:    logger,
	}
}

// Generate runs the full pipeline for the given articles. An empty
// selection is not an error: it produces a report whose table has headers
// only and whose archive holds no documents.
func (g *Generator) Generate(ctx context.Context, userID uint, articleIDs []uint) (*Result, error) {
	if g.outputDir == "" {
		return nil, stepError(StepConfiguration, errors.New("reports directory is not configured"))
	}
	if err := util.EnsureDir(g.outputDir); err != nil {
		return nil, stepError(StepConfiguration, err)
	}

	reportID, err := g.store.CreateReport(ctx, userID)
	if err != nil {
		return nil, stepError(StepPersistence, err)
	}

	snapshots, err := g.store.SelectApprovedArticles(ctx, articleIDs)
	if err != nil {
		return nil, stepError(StepSelection, err)
	}

	now := g.clock.Now()
	refs := AssignReferenceNumbers(now, len(snapshots))
	submitted := now.Format("2006-01-02")

	rows := make([]Row, len(snapshots))
	linkages := make([]Linkage, len(snapshots))
	for i, snap := range snapshots {
		rows[i] = Row{
			RefNumber:     refs[i],
			Submitted:     submitted,
			Headline:      snap.Headline,
			Publication:   snap.Publication,
			DatePublished: snap.DatePublished,
			State:         snap.StateAbbreviation,
			Text:          snap.Text,
		}
		linkages[i] = Linkage{ArticleID: snap.ArticleID, ReferenceNumber: refs[i]}
	}

	// Linkage rows are written before any file exists, in one transaction,
	// so the reference numbers are pinned from here on.
	if err := g.store.CreateLinkages(ctx, reportID, linkages); err != nil {
		return nil, stepError(StepPersistence, err)
	}

	docDir := DocumentDir(g.outputDir, reportID)
	if err := g.renderer.RenderAll(docDir, rows); err != nil {
		return nil, stepError(StepRender, err)
	}

	tableFilename, err := g.exporter.Export(g.outputDir, now, rows)
	if err != nil {
		return nil, stepError(StepExport, err)
	}

	archiveFilename := ArchiveFilename(reportID)
	cleanupWarning, err := g.bundler.Bundle(g.outputDir, archiveFilename, tableFilename, docDir)
	if err != nil {
		return nil, stepError(StepArchive, err)
	}
	if cleanupWarning != nil {
		g.logger.Warn("report cleanup failed after successful archive",
			zap.Uint("report_id", reportID),
			zap.Error(cleanupWarning))
	}

	if err := g.store.SaveReportArchiveName(ctx, reportID, archiveFilename); err != nil {
		return nil, stepError(StepPersistence, err)
	}

	g.logger.Info("report generated",
		zap.Uint("report_id", reportID),
		zap.String("archive", archiveFilename),
		zap.Int("articles", len(rows)))

	return &Result{
		ReportID:        reportID,
		ArchiveFilename: archiveFilename,
		ArticleCount:    len(rows),
		CleanupWarning:  cleanupWarning,
	}, nil
}
