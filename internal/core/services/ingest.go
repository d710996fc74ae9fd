package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driving"
	"github.com/draftmill/draftmill-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService loads a materials folder into an in-memory chunk store.
// It owns the chunks; the retrieval index holds a read-only view.
type IngestService struct {
	registry driven.NormaliserRegistry
	chunker  driven.Chunker

	documents []domain.Document
	chunks    []domain.Chunk
}

// NewIngestService creates a new ingest service.
func NewIngestService(registry driven.NormaliserRegistry, chunker driven.Chunker) *IngestService {
	return &IngestService{
		registry: registry,
		chunker:  chunker,
	}
}

// Ingest walks dir and loads every supported file. Individual files fail
// soft: unreadable or empty files are recorded in the report and the walk
// continues. Files with unsupported extensions are skipped silently.
func (s *IngestService) Ingest(ctx context.Context, dir string) (*driving.IngestReport, error) {
	logger.Section("Material Ingestion")
	logger.Info("Scanning %s", dir)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("materials folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	report := &driving.IngestReport{
		FileChunks: make(map[string]int),
	}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			report.Failed = append(report.Failed, driving.FileFailure{
				Path: path, Reason: err.Error(),
			})
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		normaliser, err := s.registry.ForFile(path)
		if errors.Is(err, domain.ErrUnsupportedType) {
			logger.Debug("Skipping unsupported file %s", path)
			return nil
		}
		if err != nil {
			report.Failed = append(report.Failed, driving.FileFailure{Path: path, Reason: err.Error()})
			return nil
		}

		count, err := s.ingestFile(ctx, normaliser, path)
		if err != nil {
			logger.Warn("Failed to ingest %s: %v", path, err)
			report.Failed = append(report.Failed, driving.FileFailure{Path: path, Reason: err.Error()})
			return nil
		}

		report.FileChunks[path] = count
		report.TotalChunks += count
		logger.Debug("Ingested %s: %d chunks", path, count)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk materials: %w", walkErr)
	}

	logger.Info("Ingested %d files, %d chunks (%d failed)",
		len(report.FileChunks), report.TotalChunks, len(report.Failed))
	return report, nil
}

// ingestFile reads, normalises, and chunks a single file.
func (s *IngestService) ingestFile(ctx context.Context, normaliser driven.Normaliser, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}

	result, err := normaliser.Normalise(ctx, path, content)
	if err != nil {
		return 0, fmt.Errorf("normalise: %w", err)
	}

	chunks, err := s.chunker.Process(ctx, &result.Document, result.Segments)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}

	s.documents = append(s.documents, result.Document)
	s.chunks = append(s.chunks, chunks...)
	return len(chunks), nil
}

// Chunks returns a read-only view of all ingested chunks in insertion
// order. The retrieval index is built over this slice.
func (s *IngestService) Chunks() []domain.Chunk {
	return s.chunks
}

// Documents returns all ingested documents.
func (s *IngestService) Documents() []domain.Document {
	return s.documents
}
