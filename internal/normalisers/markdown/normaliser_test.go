package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

const sampleMarkdown = `# Battery Market

Intro paragraph before any section.

## Supply Chain

Upstream material sourcing remains concentrated.

### Lithium

Spot prices fell through 2025.

## Demand

EV demand drives cell orders.
`

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedExtensions(t *testing.T) {
	exts := New().SupportedExtensions()
	assert.Contains(t, exts, ".md")
	assert.Contains(t, exts, ".markdown")
}

func TestNormalise_HeaderSegmentation(t *testing.T) {
	normaliser := New()
	ctx := context.Background()

	result, err := normaliser.Normalise(ctx, "/materials/battery.md", []byte(sampleMarkdown))
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.Equal(t, "Battery Market", doc.Title)
	assert.Equal(t, domain.SourceTypePrerendered, doc.SourceType)

	segs := result.Segments
	require.Len(t, segs, 4)

	assert.Equal(t, []string{"Battery Market"}, segs[0].Headers)
	assert.Contains(t, segs[0].Text, "Intro paragraph")

	assert.Equal(t, []string{"Battery Market", "Supply Chain"}, segs[1].Headers)
	assert.Contains(t, segs[1].Text, "Upstream material")

	assert.Equal(t, []string{"Battery Market", "Supply Chain", "Lithium"}, segs[2].Headers)
	assert.Contains(t, segs[2].Text, "Spot prices")

	assert.Equal(t, []string{"Battery Market", "Demand"}, segs[3].Headers)
	assert.Contains(t, segs[3].Text, "EV demand")
}

func TestNormalise_DeepHeadingsStayInBody(t *testing.T) {
	md := "# Top\n\n#### Too Deep\n\nBody under a level-4 heading.\n"

	result, err := New().Normalise(context.Background(), "/m/deep.md", []byte(md))
	require.NoError(t, err)

	require.Len(t, result.Segments, 1)
	assert.Equal(t, []string{"Top"}, result.Segments[0].Headers)
	assert.Contains(t, result.Segments[0].Text, "Body under a level-4 heading.")
}

func TestNormalise_SkippedHeadingLevel(t *testing.T) {
	md := "# Top\n\n### Jumped\n\nContent.\n"

	result, err := New().Normalise(context.Background(), "/m/skip.md", []byte(md))
	require.NoError(t, err)

	require.Len(t, result.Segments, 1)
	// Placeholder for the missing H2 is dropped from the breadcrumb.
	assert.Equal(t, []string{"Top", "Jumped"}, result.Segments[0].Headers)
}

func TestNormalise_NoHeaders(t *testing.T) {
	md := "Just a paragraph.\n\nAnd another one.\n"

	result, err := New().Normalise(context.Background(), "/m/flat.md", []byte(md))
	require.NoError(t, err)

	require.Len(t, result.Segments, 1)
	assert.Empty(t, result.Segments[0].Headers)
	assert.Contains(t, result.Segments[0].Text, "Just a paragraph.")
	assert.Contains(t, result.Segments[0].Text, "And another one.")
}

func TestNormalise_EmptyContent(t *testing.T) {
	result, err := New().Normalise(context.Background(), "/m/empty.md", []byte("  \n"))
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.Nil(t, result)
}

func TestNormalise_TitleFallsBackToFilename(t *testing.T) {
	md := "Paragraph only, no headings.\n"

	result, err := New().Normalise(context.Background(), "/m/q3_supply-notes.md", []byte(md))
	require.NoError(t, err)
	assert.Equal(t, "q3 supply notes", result.Document.Title)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
