package driven

import (
	"context"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

// RenderOutcome is the tri-state result of one renderer attempt.
type RenderOutcome int

const (
	// RenderOK means the renderer produced an artifact.
	RenderOK RenderOutcome = iota

	// RenderTryNext means this renderer cannot handle the spec (missing
	// capability, unsupported kind); the cascade moves to the next one.
	RenderTryNext

	// RenderAbort means rendering failed in a way retrying with another
	// backend cannot fix (unwritable output target); the cascade stops.
	RenderAbort
)

// String returns the string representation.
func (o RenderOutcome) String() string {
	switch o {
	case RenderOK:
		return "ok"
	case RenderTryNext:
		return "try_next"
	case RenderAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// RenderResult reports what a renderer did with a spec.
type RenderResult struct {
	// Outcome is the tri-state disposition.
	Outcome RenderOutcome

	// ArtifactRef references the produced artifact when Outcome is
	// RenderOK: a file path for file-producing backends, or inline
	// markdown for the table fallback.
	ArtifactRef string

	// Inline is true when ArtifactRef is markdown to embed directly
	// rather than a file to link.
	Inline bool

	// Err carries the failure detail for non-OK outcomes.
	Err error
}

// Renderer turns a validated VisualSpec into an artifact. The cascade
// holds an ordered list of these and tries them in sequence. Specs arrive
// already validated; renderers never re-check structural invariants.
type Renderer interface {
	// Render attempts to produce an artifact under outDir. The baseName
	// carries no extension; renderers append their own.
	Render(ctx context.Context, spec domain.VisualSpec, outDir, baseName string) RenderResult

	// Name identifies the renderer in logs.
	Name() string
}
