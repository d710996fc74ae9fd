package driven

import (
	"context"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

// Chunker splits a document's segments into retrievable chunks.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Process windows every segment into overlapping chunks, preserving
	// segment header paths as chunk breadcrumb metadata.
	Process(ctx context.Context, doc *domain.Document, segments []domain.Segment) ([]domain.Chunk, error)
}
