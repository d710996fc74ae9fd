// Package echarts provides the interactive HTML chart renderer. It sits
// first in the render cascade and covers every chart kind.
package echarts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// renderable is the common surface of every go-echarts chart type.
type renderable interface {
	Render(w io.Writer) error
}

// Renderer produces self-contained interactive HTML charts.
type Renderer struct{}

// NewRenderer creates an interactive chart renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Name identifies the renderer in logs.
func (r *Renderer) Name() string {
	return "echarts-html"
}

// Render writes an HTML artifact for the spec. Unexpected build failures
// are soft: the cascade moves on to the static backend.
func (r *Renderer) Render(_ context.Context, spec domain.VisualSpec, outDir, baseName string) driven.RenderResult {
	chart, err := r.build(spec)
	if err != nil {
		return driven.RenderResult{Outcome: driven.RenderTryNext, Err: err}
	}

	path := filepath.Join(outDir, baseName+".html")
	f, err := os.Create(path)
	if err != nil {
		// An unwritable output target will fail every file-producing
		// backend the same way.
		return driven.RenderResult{Outcome: driven.RenderAbort, Err: fmt.Errorf("create artifact: %w", err)}
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		os.Remove(path)
		return driven.RenderResult{Outcome: driven.RenderTryNext, Err: fmt.Errorf("render %s: %w", spec.Kind, err)}
	}

	return driven.RenderResult{Outcome: driven.RenderOK, ArtifactRef: path}
}

// build constructs the chart for the spec's kind.
func (r *Renderer) build(spec domain.VisualSpec) (renderable, error) {
	switch spec.Kind {
	case domain.ChartBar:
		return r.buildBar(spec, false), nil
	case domain.ChartStackedBar:
		return r.buildBar(spec, true), nil
	case domain.ChartLine:
		return r.buildLine(spec, false), nil
	case domain.ChartArea:
		return r.buildLine(spec, true), nil
	case domain.ChartPie:
		return r.buildPie(spec), nil
	case domain.ChartRadar:
		return r.buildRadar(spec), nil
	case domain.ChartScatter, domain.ChartBubble:
		return r.buildScatter(spec), nil
	case domain.ChartHeatmap:
		return r.buildHeatmap(spec), nil
	case domain.ChartMixed:
		return r.buildMixed(spec), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrRenderUnsupported, spec.Kind)
	}
}

func (r *Renderer) buildBar(spec domain.VisualSpec, stacked bool) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(spec)...)
	bar.SetXAxis(spec.Labels)
	for _, ds := range spec.Datasets {
		items := make([]opts.BarData, len(ds.Values))
		for i, v := range ds.Values {
			items[i] = opts.BarData{Value: v}
		}
		if stacked {
			bar.AddSeries(ds.Label, items, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		} else {
			bar.AddSeries(ds.Label, items)
		}
	}
	return bar
}

func (r *Renderer) buildLine(spec domain.VisualSpec, area bool) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(spec)...)
	line.SetXAxis(spec.Labels)
	for _, ds := range spec.Datasets {
		items := make([]opts.LineData, len(ds.Values))
		for i, v := range ds.Values {
			items[i] = opts.LineData{Value: v}
		}
		if area {
			line.AddSeries(ds.Label, items,
				charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.3}))
		} else {
			line.AddSeries(ds.Label, items)
		}
	}
	return line
}

func (r *Renderer) buildPie(spec domain.VisualSpec) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: spec.Title}))

	// Pie uses the first dataset; labels become slice names.
	ds := spec.Datasets[0]
	items := make([]opts.PieData, len(ds.Values))
	for i, v := range ds.Values {
		items[i] = opts.PieData{Name: spec.Labels[i], Value: v}
	}
	pie.AddSeries(ds.Label, items)
	return pie
}

func (r *Renderer) buildRadar(spec domain.VisualSpec) *charts.Radar {
	radar := charts.NewRadar()

	max := maxValue(spec)
	indicators := make([]*opts.Indicator, len(spec.Labels))
	for i, label := range spec.Labels {
		indicators[i] = &opts.Indicator{Name: label, Max: float32(max)}
	}
	radar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}),
	)

	for _, ds := range spec.Datasets {
		// Close the polygon: the first value repeats at the end.
		closed := append(append([]float64{}, ds.Values...), ds.Values[0])
		radar.AddSeries(ds.Label, []opts.RadarData{{Name: ds.Label, Value: closed}})
	}
	return radar
}

func (r *Renderer) buildScatter(spec domain.VisualSpec) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(globalOptions(spec)...)
	scatter.SetXAxis(spec.Labels)
	for _, ds := range spec.Datasets {
		items := make([]opts.ScatterData, len(ds.Values))
		for i, v := range ds.Values {
			size := 10
			if spec.Kind == domain.ChartBubble {
				// Bubble area tracks the value relative to the maximum.
				size = bubbleSize(v, maxValue(spec))
			}
			items[i] = opts.ScatterData{Value: v, SymbolSize: size}
		}
		scatter.AddSeries(ds.Label, items)
	}
	return scatter
}

func (r *Renderer) buildHeatmap(spec domain.VisualSpec) *charts.HeatMap {
	heatmap := charts.NewHeatMap()

	rows := make([]string, len(spec.Datasets))
	for i, ds := range spec.Datasets {
		rows[i] = ds.Label
	}
	heatmap.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: spec.Labels}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: rows}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Max:        float32(maxValue(spec)),
		}),
	)

	var items []opts.HeatMapData
	for y, ds := range spec.Datasets {
		for x, v := range ds.Values {
			items = append(items, opts.HeatMapData{Value: [3]interface{}{x, y, v}})
		}
	}
	heatmap.AddSeries("heat", items)
	return heatmap
}

// buildMixed renders the first dataset as bars and the rest as lines on
// the same axes.
func (r *Renderer) buildMixed(spec domain.VisualSpec) *charts.Bar {
	barSpec := spec
	barSpec.Datasets = spec.Datasets[:1]
	bar := r.buildBar(barSpec, false)

	if len(spec.Datasets) > 1 {
		lineSpec := spec
		lineSpec.Datasets = spec.Datasets[1:]
		bar.Overlap(r.buildLine(lineSpec, false))
	}
	return bar
}

func globalOptions(spec domain.VisualSpec) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.YLabel}),
	}
}

func maxValue(spec domain.VisualSpec) float64 {
	max := 0.0
	for _, ds := range spec.Datasets {
		for _, v := range ds.Values {
			if v > max {
				max = v
			}
		}
	}
	return max
}

func bubbleSize(v, max float64) int {
	if max <= 0 {
		return 10
	}
	size := int(40 * v / max)
	if size < 5 {
		size = 5
	}
	return size
}
