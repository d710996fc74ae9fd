// Package chartpng provides the static PNG chart renderer. It sits
// second in the render cascade, behind the interactive backend.
package chartpng

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// Chart canvas size.
const (
	chartWidth  = 900
	chartHeight = 500
)

// Renderer produces static PNG charts. Kinds the library cannot express
// fall through to the next backend; a heatmap renders a descriptive
// summary rather than erroring.
type Renderer struct{}

// NewRenderer creates a static chart renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Name identifies the renderer in logs.
func (r *Renderer) Name() string {
	return "go-chart-png"
}

// Render writes a PNG artifact for the spec.
func (r *Renderer) Render(_ context.Context, spec domain.VisualSpec, outDir, baseName string) driven.RenderResult {
	path := filepath.Join(outDir, baseName+".png")
	f, err := os.Create(path)
	if err != nil {
		return driven.RenderResult{Outcome: driven.RenderAbort, Err: fmt.Errorf("create artifact: %w", err)}
	}
	defer f.Close()

	if err := r.draw(spec, f); err != nil {
		os.Remove(path)
		if !errors.Is(err, domain.ErrRenderUnsupported) {
			err = fmt.Errorf("render %s: %w", spec.Kind, err)
		}
		return driven.RenderResult{Outcome: driven.RenderTryNext, Err: err}
	}

	return driven.RenderResult{Outcome: driven.RenderOK, ArtifactRef: path}
}

// draw dispatches on chart kind.
func (r *Renderer) draw(spec domain.VisualSpec, f *os.File) error {
	switch spec.Kind {
	case domain.ChartBar:
		return r.drawBar(spec, f)
	case domain.ChartStackedBar:
		return r.drawStackedBar(spec, f)
	case domain.ChartLine, domain.ChartArea, domain.ChartScatter:
		return r.drawXY(spec, f)
	case domain.ChartPie:
		return r.drawPie(spec, f)
	case domain.ChartHeatmap:
		// No matrix capability here: a per-row summary bar chart stands
		// in as the descriptive placeholder.
		return r.drawHeatmapPlaceholder(spec, f)
	case domain.ChartRadar, domain.ChartBubble, domain.ChartMixed:
		return fmt.Errorf("%w: %s", domain.ErrRenderUnsupported, spec.Kind)
	default:
		return fmt.Errorf("%w: %s", domain.ErrRenderUnsupported, spec.Kind)
	}
}

// drawBar renders the first dataset as a bar chart.
func (r *Renderer) drawBar(spec domain.VisualSpec, f *os.File) error {
	ds := spec.Datasets[0]
	bars := make([]chart.Value, len(ds.Values))
	for i, v := range ds.Values {
		bars[i] = chart.Value{Value: v, Label: spec.Labels[i]}
	}

	graph := chart.BarChart{
		Title:  spec.Title,
		Width:  chartWidth,
		Height: chartHeight,
		Bars:   bars,
	}
	return graph.Render(chart.PNG, f)
}

// drawStackedBar renders one stacked bar per label with a segment per
// dataset.
func (r *Renderer) drawStackedBar(spec domain.VisualSpec, f *os.File) error {
	bars := make([]chart.StackedBar, len(spec.Labels))
	for i, label := range spec.Labels {
		values := make([]chart.Value, len(spec.Datasets))
		for j, ds := range spec.Datasets {
			values[j] = chart.Value{Value: ds.Values[i], Label: ds.Label}
		}
		bars[i] = chart.StackedBar{Name: label, Values: values}
	}

	graph := chart.StackedBarChart{
		Title:  spec.Title,
		Width:  chartWidth,
		Height: chartHeight,
		Bars:   bars,
	}
	return graph.Render(chart.PNG, f)
}

// drawXY renders line, area, and scatter charts over label indices.
func (r *Renderer) drawXY(spec domain.VisualSpec, f *os.File) error {
	ticks := make([]chart.Tick, len(spec.Labels))
	xs := make([]float64, len(spec.Labels))
	for i, label := range spec.Labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
		xs[i] = float64(i)
	}

	series := make([]chart.Series, len(spec.Datasets))
	for i, ds := range spec.Datasets {
		s := chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ds.Values,
		}
		switch spec.Kind {
		case domain.ChartArea:
			s.Style = chart.Style{
				StrokeWidth: 2,
				FillColor:   chart.GetDefaultColor(i).WithAlpha(80),
			}
		case domain.ChartScatter:
			s.Style = chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
			}
		}
		series[i] = s
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: spec.XLabel, Ticks: ticks},
		YAxis:  chart.YAxis{Name: spec.YLabel},
		Series: series,
	}
	return graph.Render(chart.PNG, f)
}

// drawPie renders the first dataset as a pie chart.
func (r *Renderer) drawPie(spec domain.VisualSpec, f *os.File) error {
	ds := spec.Datasets[0]
	values := make([]chart.Value, len(ds.Values))
	for i, v := range ds.Values {
		values[i] = chart.Value{Value: v, Label: spec.Labels[i]}
	}

	graph := chart.PieChart{
		Title:  spec.Title,
		Width:  chartHeight,
		Height: chartHeight,
		Values: values,
	}
	return graph.Render(chart.PNG, f)
}

// drawHeatmapPlaceholder renders per-row totals as a bar chart with an
// annotated title.
func (r *Renderer) drawHeatmapPlaceholder(spec domain.VisualSpec, f *os.File) error {
	bars := make([]chart.Value, len(spec.Datasets))
	for i, ds := range spec.Datasets {
		total := 0.0
		for _, v := range ds.Values {
			total += v
		}
		bars[i] = chart.Value{Value: total, Label: ds.Label}
	}

	graph := chart.BarChart{
		Title:  spec.Title + " (row totals, heatmap view unavailable)",
		Width:  chartWidth,
		Height: chartHeight,
		Bars:   bars,
	}
	return graph.Render(chart.PNG, f)
}
