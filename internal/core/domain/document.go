package domain

import "time"

// Source type tags attached to chunk metadata.
const (
	// SourceTypePrerendered marks content that arrived already rendered to
	// markdown by an external exporter. Typically higher fidelity.
	SourceTypePrerendered = "prerendered"

	// SourceTypeParsed marks content parsed directly from a raw file.
	SourceTypeParsed = "parsed"
)

// Document represents a loaded source material file.
// It is the canonical representation after normalisation and is immutable
// once loaded.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (file path).
	URI string

	// Title is the human-readable title, usually the base filename.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// SourceType distinguishes pre-rendered from directly parsed content.
	SourceType string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// LoadedAt is when the document was read from disk.
	LoadedAt time.Time
}

// Segment is an intermediate slice of a document produced by structure-aware
// splitting, before window chunking. A document without structural markup
// yields a single segment with no headers.
type Segment struct {
	// Text is the segment content.
	Text string

	// Headers is the header path (levels 1-3) covering the segment,
	// outermost first.
	Headers []string
}

// Chunk represents a retrievable evidence unit within a document.
// Documents are split into ordered, overlapping chunks during ingestion.
// Chunks are immutable; insertion order is preserved for stable ranking.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Source is the originating filename, used in citations.
	Source string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Weight boosts or dampens this chunk's relevance score. Default 1.0.
	Weight float64

	// Headers is the structural header path (levels 1-3) the chunk
	// falls under, outermost first. Empty for unstructured sources.
	Headers []string

	// Embedding is the vector representation for semantic retrieval.
	// Nil when no embedding service is configured.
	Embedding []float32

	// Metadata merges document-level and structural key-value pairs.
	Metadata map[string]any
}

// Breadcrumb renders the provenance trail embedded in evidence text,
// in the form "filename > Header1 > Header2 > Header3".
func (c Chunk) Breadcrumb() string {
	trail := c.Source
	for _, h := range c.Headers {
		trail += " > " + h
	}
	return trail
}
