package driving

import (
	"context"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

// IngestService loads a materials folder into the chunk store.
type IngestService interface {
	// Ingest walks dir, normalises and chunks every supported file, and
	// returns per-file statistics. Individual file failures are recorded
	// in the report, not raised.
	Ingest(ctx context.Context, dir string) (*IngestReport, error)
}

// IngestReport summarises one ingestion pass.
type IngestReport struct {
	// FileChunks maps each ingested file path to its chunk count.
	FileChunks map[string]int

	// TotalChunks is the chunk count across all files.
	TotalChunks int

	// Failed records files that could not be ingested.
	Failed []FileFailure
}

// FileFailure describes one file that failed ingestion.
type FileFailure struct {
	// Path is the file that failed.
	Path string

	// Reason is the human-readable failure cause.
	Reason string
}

// RetrieveService answers relevance queries over ingested materials.
type RetrieveService interface {
	// Retrieve returns the topK ranked chunks for a query.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.ScoredChunk, error)

	// EvidenceBlock formats the topK results into a citation-annotated
	// evidence text. Empty string when nothing scores above zero.
	EvidenceBlock(ctx context.Context, query string, topK int) (string, error)

	// Strategy reports the active retrieval strategy, reflecting any
	// permanent downgrade to keyword-only.
	Strategy() domain.RetrievalStrategy
}
