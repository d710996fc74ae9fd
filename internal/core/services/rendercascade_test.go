package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// scriptedRenderer returns a fixed result and records calls.
type scriptedRenderer struct {
	name   string
	result driven.RenderResult
	calls  int
}

func (r *scriptedRenderer) Render(_ context.Context, _ domain.VisualSpec, _, _ string) driven.RenderResult {
	r.calls++
	return r.result
}

func (r *scriptedRenderer) Name() string { return r.name }

func barSpec() domain.VisualSpec {
	return domain.VisualSpec{
		Kind:   domain.ChartBar,
		Title:  "Revenue by Year",
		Labels: []string{"2023", "2024"},
		Datasets: []domain.Dataset{
			{Label: "Revenue", Values: []float64{90, 120}},
		},
	}
}

func TestRenderCascade_FirstRendererWins(t *testing.T) {
	first := &scriptedRenderer{name: "interactive",
		result: driven.RenderResult{Outcome: driven.RenderOK, ArtifactRef: "charts/x.html"}}
	second := &scriptedRenderer{name: "static",
		result: driven.RenderResult{Outcome: driven.RenderOK, ArtifactRef: "charts/x.png"}}

	cascade := NewRenderCascade(first, second)
	result, err := cascade.Render(context.Background(), barSpec(), "charts", "x")
	require.NoError(t, err)
	assert.Equal(t, "charts/x.html", result.ArtifactRef)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
}

func TestRenderCascade_FallsThrough(t *testing.T) {
	first := &scriptedRenderer{name: "interactive",
		result: driven.RenderResult{Outcome: driven.RenderTryNext, Err: errors.New("no heatmap support")}}
	second := &scriptedRenderer{name: "table",
		result: driven.RenderResult{Outcome: driven.RenderOK, ArtifactRef: "| a |\n| 1 |", Inline: true}}

	cascade := NewRenderCascade(first, second)
	result, err := cascade.Render(context.Background(), barSpec(), "charts", "x")
	require.NoError(t, err)
	assert.True(t, result.Inline)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestRenderCascade_AbortStopsTheCascade(t *testing.T) {
	abortErr := errors.New("output folder unwritable")
	first := &scriptedRenderer{name: "interactive",
		result: driven.RenderResult{Outcome: driven.RenderAbort, Err: abortErr}}
	second := &scriptedRenderer{name: "static",
		result: driven.RenderResult{Outcome: driven.RenderOK, ArtifactRef: "charts/x.png"}}

	cascade := NewRenderCascade(first, second)
	_, err := cascade.Render(context.Background(), barSpec(), "charts", "x")
	assert.ErrorIs(t, err, abortErr)
	assert.Zero(t, second.calls, "abort must not consult later renderers")
}

func TestRenderCascade_ValidationBeforeAnyBackend(t *testing.T) {
	renderer := &scriptedRenderer{name: "interactive",
		result: driven.RenderResult{Outcome: driven.RenderOK}}
	cascade := NewRenderCascade(renderer)

	t.Run("invalid spec", func(t *testing.T) {
		spec := barSpec()
		spec.Kind = "sankey"
		_, err := cascade.Render(context.Background(), spec, "charts", "x")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, renderer.calls)
	})

	t.Run("all-zero data", func(t *testing.T) {
		spec := barSpec()
		spec.Datasets[0].Values = []float64{0, 0}
		_, err := cascade.Render(context.Background(), spec, "charts", "x")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, renderer.calls)
	})
}

func TestRenderCascade_Empty(t *testing.T) {
	cascade := NewRenderCascade()
	_, err := cascade.Render(context.Background(), barSpec(), "charts", "x")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRenderCascade_AllDecline(t *testing.T) {
	first := &scriptedRenderer{name: "interactive",
		result: driven.RenderResult{Outcome: driven.RenderTryNext, Err: errors.New("unsupported")}}
	cascade := NewRenderCascade(first)

	_, err := cascade.Render(context.Background(), barSpec(), "charts", "x")
	assert.Error(t, err)
}
