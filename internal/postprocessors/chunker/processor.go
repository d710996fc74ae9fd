// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// DefaultChunkWeight is the relevance weight chunks carry unless boosted.
const DefaultChunkWeight = 1.0

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits document segments into fixed-size overlapping chunks,
// carrying each segment's header path into the chunk breadcrumb.
// Windows are measured in runes so CJK text chunks by character, not byte.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process windows every segment into overlapping chunks. Chunk positions
// are ordinal across the whole document so insertion order stays stable
// for ranking tie-breaks.
func (p *Processor) Process(_ context.Context, doc *domain.Document, segments []domain.Segment) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	source := filepath.Base(doc.URI)
	var chunks []domain.Chunk
	position := 0

	for _, seg := range segments {
		runes := []rune(seg.Text)
		if len(runes) == 0 {
			continue
		}

		start := 0
		for start < len(runes) {
			end := start + p.chunkSize
			if end > len(runes) {
				end = len(runes)
			}

			metadata := map[string]any{
				"source_type": doc.SourceType,
			}
			for k, v := range doc.Metadata {
				metadata[k] = v
			}

			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Source:     source,
				Content:    string(runes[start:end]),
				Position:   position,
				Weight:     DefaultChunkWeight,
				Headers:    seg.Headers,
				Metadata:   metadata,
			})
			position++

			if end == len(runes) {
				break
			}
			start += p.chunkSize - p.overlap
		}
	}

	return chunks, nil
}
