package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFRenderer_RenderAll(t *testing.T) {
	docDir := filepath.Join(t.TempDir(), "article_pdfs_1")

	rows := []Row{
		{
			RefNumber:     "250418001",
			Submitted:     "2025-04-18",
			Headline:      "Recall announced for faulty space heaters",
			Publication:   "Daily Ledger",
			DatePublished: "2025-04-15",
			State:         "OH",
			Text:          "The manufacturer announced a voluntary recall.",
		},
		{
			// Missing state and publication render as empty values.
			RefNumber: "250418002",
			Submitted: "2025-04-18",
			Headline:  "Second article",
		},
	}

	err := PDFRenderer{}.RenderAll(docDir, rows)
	require.NoError(t, err)

	for _, row := range rows {
		data, err := os.ReadFile(filepath.Join(docDir, row.RefNumber+".pdf"))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "file should be a PDF document")
	}
}

func TestPDFRenderer_CreatesDocDir(t *testing.T) {
	docDir := filepath.Join(t.TempDir(), "nested", "article_pdfs_9")

	err := PDFRenderer{}.RenderAll(docDir, nil)
	require.NoError(t, err)

	info, err := os.Stat(docDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPDFRenderer_UnwritableDocDir(t *testing.T) {
	// A regular file where the parent directory should be makes directory
	// creation fail.
	blocker := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := PDFRenderer{}.RenderAll(filepath.Join(blocker, "docs"), []Row{{RefNumber: "250418001"}})
	assert.Error(t, err)
}
