package driving

import (
	"context"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

// ReportService runs the generation pipeline over an outline.
type ReportService interface {
	// GenerateReport processes every leaf unit of the outline in
	// document order and returns the run summary. Unit failures are
	// collected, never raised; the error return covers run-level
	// failures only (unreadable materials, invalid outline).
	GenerateReport(ctx context.Context, req GenerateRequest) (*RunSummary, error)
}

// GenerateRequest carries everything one run needs.
type GenerateRequest struct {
	// Topic is the report subject threaded into every prompt.
	Topic string

	// Outline is the writing plan. Must validate.
	Outline domain.Outline

	// MaterialsDir is the local source material folder.
	MaterialsDir string

	// Resume skips units already persisted in a terminal state.
	Resume bool

	// ForceLookup bypasses the evidence cache's trigger-term gate.
	ForceLookup bool
}

// RunSummary reports what a run produced.
type RunSummary struct {
	// ReportPath is the cumulative report file.
	ReportPath string

	// Finalized lists fully-qualified paths of finalized units.
	Finalized []string

	// Failed lists fully-qualified paths of failed units.
	Failed []string

	// Skipped lists units carried over from a previous run.
	Skipped []string
}
