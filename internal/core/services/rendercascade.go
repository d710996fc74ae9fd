package services

import (
	"context"
	"fmt"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
	"github.com/draftmill/draftmill-cli/internal/logger"
)

// RenderCascade tries an ordered list of renderers until one produces an
// artifact. With the markdown table fallback registered last, the cascade
// never fails a unit solely because rendering failed.
type RenderCascade struct {
	renderers []driven.Renderer
}

// NewRenderCascade creates a cascade over the given renderers, tried in
// order.
func NewRenderCascade(renderers ...driven.Renderer) *RenderCascade {
	return &RenderCascade{renderers: renderers}
}

// Render validates the spec, then walks the cascade. Validation failures
// and all-zero data return an error before any renderer runs; the caller
// proceeds with no chart.
func (c *RenderCascade) Render(ctx context.Context, spec domain.VisualSpec, outDir, baseName string) (driven.RenderResult, error) {
	if err := spec.Validate(); err != nil {
		return driven.RenderResult{}, fmt.Errorf("visual spec: %w", err)
	}
	if !spec.HasData() {
		return driven.RenderResult{}, fmt.Errorf("%w: all chart values are zero", domain.ErrInvalidInput)
	}
	if len(c.renderers) == 0 {
		return driven.RenderResult{}, fmt.Errorf("%w: no renderers configured", domain.ErrUnsupportedType)
	}

	var last driven.RenderResult
	for _, r := range c.renderers {
		result := r.Render(ctx, spec, outDir, baseName)
		switch result.Outcome {
		case driven.RenderOK:
			logger.Debug("Rendered %s chart with %s", spec.Kind, r.Name())
			return result, nil
		case driven.RenderTryNext:
			logger.Debug("Renderer %s passed on %s chart: %v", r.Name(), spec.Kind, result.Err)
			last = result
		case driven.RenderAbort:
			logger.Warn("Renderer %s aborted cascade: %v", r.Name(), result.Err)
			return result, result.Err
		}
	}

	// Every renderer passed. With the table fallback registered this is
	// unreachable; surface the last soft failure anyway.
	return last, fmt.Errorf("all renderers declined %s chart: %w", spec.Kind, last.Err)
}
