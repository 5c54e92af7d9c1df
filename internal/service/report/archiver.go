package report

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArchiveDocsDir is the folder name the documents live under inside the
// archive, regardless of the per-run directory name on disk.
const ArchiveDocsDir = "article_pdfs"

// ArchiveFilename returns the bundle name for a report run. Keyed by
// report id so concurrent runs never collide.
func ArchiveFilename(reportID uint) string {
	return fmt.Sprintf("report_bundle_%d.zip", reportID)
}

// DocumentDir returns the on-disk per-run document directory.
func DocumentDir(outputDir string, reportID uint) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_%d", ArchiveDocsDir, reportID))
}

// ZipBundler combines the table file and the document directory into one
// zip archive in two phases: the archive is fully written and closed under
// a .partial name, renamed into place, and only then are the source files
// removed. A failure before the rename leaves every source intact for
// diagnosis. A cleanup failure after the rename is returned as a warning;
// the archive itself is already valid.
type ZipBundler struct{}

func (ZipBundler) Bundle(outputDir, archiveFilename, tableFilename, docDir string) (cleanupWarning error, err error) {
	tablePath := filepath.Join(outputDir, tableFilename)
	finalPath := filepath.Join(outputDir, archiveFilename)
	partialPath := finalPath + ".partial"

	if err := writeZip(partialPath, tablePath, tableFilename, docDir); err != nil {
		os.Remove(partialPath)
		return nil, err
	}
	if err := os.Rename(partialPath, finalPath); err != nil {
		os.Remove(partialPath)
		return nil, err
	}

	// Cleanup only touches this run's own files, never the shared
	// directory at large.
	var problems []string
	if err := os.Remove(tablePath); err != nil {
		problems = append(problems, fmt.Sprintf("remove table file: %v", err))
	}
	if err := os.RemoveAll(docDir); err != nil {
		problems = append(problems, fmt.Sprintf("remove document directory: %v", err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("cleanup after archive: %s", strings.Join(problems, "; ")), nil
	}
	return nil, nil
}

func writeZip(zipPath, tablePath, tableName, docDir string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	if err := addZipFile(zw, tablePath, tableName); err != nil {
		zw.Close()
		out.Close()
		return err
	}

	// Explicit directory entry keeps the bundle shape stable even for
	// runs with zero documents.
	if _, err := zw.Create(ArchiveDocsDir + "/"); err != nil {
		zw.Close()
		out.Close()
		return err
	}
	if err := addDocuments(zw, docDir); err != nil {
		zw.Close()
		out.Close()
		return err
	}

	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("close archive writer: %w", err)
	}
	return out.Close()
}

func addDocuments(zw *zip.Writer, docDir string) error {
	entries, err := os.ReadDir(docDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read document directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(docDir, entry.Name())
		if err := addZipFile(zw, src, ArchiveDocsDir+"/"+entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

func addZipFile(zw *zip.Writer, srcPath, nameInZip string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer src.Close()

	w, err := zw.Create(nameInZip)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write %s: %w", nameInZip, err)
	}
	return nil
}
