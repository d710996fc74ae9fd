package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill-cli/internal/normalisers"
	"github.com/draftmill/draftmill-cli/internal/postprocessors/chunker"
)

func writeMaterial(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestService_Ingest(t *testing.T) {
	dir := t.TempDir()
	mdPath := writeMaterial(t, dir, "market.md", "# Battery Market\n\nDemand grew 34% in 2024.\n")
	txtPath := writeMaterial(t, dir, "sub/notes.txt", "Lithium supply notes.\n")
	writeMaterial(t, dir, "deck.pptx", "binary-ish")
	writeMaterial(t, dir, ".hidden.md", "# Skipped\n\nHidden files stay out.\n")
	emptyPath := writeMaterial(t, dir, "empty.txt", "   \n")

	svc := NewIngestService(normalisers.DefaultRegistry(), chunker.New())
	report, err := svc.Ingest(context.Background(), dir)
	require.NoError(t, err)

	t.Run("supported files produce chunks", func(t *testing.T) {
		assert.Equal(t, 1, report.FileChunks[mdPath])
		assert.Equal(t, 1, report.FileChunks[txtPath])
		assert.Equal(t, 2, report.TotalChunks)
		assert.Len(t, svc.Chunks(), 2)
		assert.Len(t, svc.Documents(), 2)
	})

	t.Run("unsupported and hidden files are skipped silently", func(t *testing.T) {
		for path := range report.FileChunks {
			assert.NotContains(t, path, "pptx")
			assert.NotContains(t, path, ".hidden")
		}
	})

	t.Run("empty file fails soft", func(t *testing.T) {
		require.Len(t, report.Failed, 1)
		assert.Equal(t, emptyPath, report.Failed[0].Path)
		assert.Contains(t, report.Failed[0].Reason, "empty")
	})
}

func TestIngestService_Ingest_Errors(t *testing.T) {
	svc := NewIngestService(normalisers.DefaultRegistry(), chunker.New())

	t.Run("missing folder", func(t *testing.T) {
		_, err := svc.Ingest(context.Background(), filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("file instead of folder", func(t *testing.T) {
		dir := t.TempDir()
		path := writeMaterial(t, dir, "file.txt", "content")
		_, err := svc.Ingest(context.Background(), path)
		assert.Error(t, err)
	})
}

func TestIngestService_HiddenDirectorySkipped(t *testing.T) {
	dir := t.TempDir()
	writeMaterial(t, dir, ".git/config.txt", "not material")
	visible := writeMaterial(t, dir, "visible.txt", "real material")

	svc := NewIngestService(normalisers.DefaultRegistry(), chunker.New())
	report, err := svc.Ingest(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, report.FileChunks, 1)
	assert.Contains(t, report.FileChunks, visible)
}
