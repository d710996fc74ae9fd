// Package table provides the terminal markdown-table fallback renderer.
// It never fails, so a unit is never lost solely to rendering trouble.
package table

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// Renderer emits a markdown table built directly from the spec's labels
// and datasets. The artifact is inline markdown, not a file.
type Renderer struct{}

// NewRenderer creates a markdown table renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Name identifies the renderer in logs.
func (r *Renderer) Name() string {
	return "markdown-table"
}

// Render builds the table. Always succeeds.
func (r *Renderer) Render(_ context.Context, spec domain.VisualSpec, _, _ string) driven.RenderResult {
	var sb strings.Builder

	if spec.Title != "" {
		fmt.Fprintf(&sb, "**%s**\n\n", spec.Title)
	}

	// Header: the label axis, then one column per dataset.
	axis := spec.XLabel
	if axis == "" {
		axis = "Label"
	}
	sb.WriteString("| " + axis)
	for _, ds := range spec.Datasets {
		sb.WriteString(" | " + ds.Label)
	}
	sb.WriteString(" |\n|")
	for i := 0; i <= len(spec.Datasets); i++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for i, label := range spec.Labels {
		sb.WriteString("| " + label)
		for _, ds := range spec.Datasets {
			sb.WriteString(" | " + formatValue(ds.Values[i]))
		}
		sb.WriteString(" |\n")
	}

	if spec.Source != "" {
		fmt.Fprintf(&sb, "\nSource: %s\n", spec.Source)
	}

	return driven.RenderResult{
		Outcome:     driven.RenderOK,
		ArtifactRef: sb.String(),
		Inline:      true,
	}
}

// formatValue drops the decimal point from whole numbers.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
