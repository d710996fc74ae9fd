package domain

import "fmt"

// ChartKind identifies the visual form a VisualSpec renders as.
type ChartKind string

// The closed set of recognised chart kinds.
const (
	ChartBar        ChartKind = "bar"
	ChartLine       ChartKind = "line"
	ChartPie        ChartKind = "pie"
	ChartRadar      ChartKind = "radar"
	ChartArea       ChartKind = "area"
	ChartScatter    ChartKind = "scatter"
	ChartBubble     ChartKind = "bubble"
	ChartStackedBar ChartKind = "stacked_bar"
	ChartHeatmap    ChartKind = "heatmap"
	ChartMixed      ChartKind = "mixed"
)

// IsValid returns true if the chart kind is recognised.
func (k ChartKind) IsValid() bool {
	switch k {
	case ChartBar, ChartLine, ChartPie, ChartRadar, ChartArea,
		ChartScatter, ChartBubble, ChartStackedBar, ChartHeatmap, ChartMixed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ChartKind) String() string {
	return string(k)
}

// AllChartKinds returns every recognised chart kind.
func AllChartKinds() []ChartKind {
	return []ChartKind{
		ChartBar, ChartLine, ChartPie, ChartRadar, ChartArea,
		ChartScatter, ChartBubble, ChartStackedBar, ChartHeatmap, ChartMixed,
	}
}

// Dataset is one named series within a VisualSpec.
type Dataset struct {
	// Label names the series.
	Label string `json:"label"`

	// Values holds one numeric value per spec label.
	Values []float64 `json:"values"`
}

// VisualSpec is a declarative chart description, independent of any
// rendering technology. It is the only thing renderers ever consume;
// backends never execute generated code.
type VisualSpec struct {
	// Kind is the chart kind. Must be a member of the closed set.
	Kind ChartKind `json:"type"`

	// Title is the chart title.
	Title string `json:"title"`

	// XLabel and YLabel name the axes where the kind has axes.
	XLabel string `json:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty"`

	// Labels are the category labels along the primary axis.
	Labels []string `json:"labels"`

	// Datasets are the series plotted against Labels.
	Datasets []Dataset `json:"datasets"`

	// Source cites where the underlying numbers came from.
	Source string `json:"source,omitempty"`
}

// Validate checks the structural invariants: a recognised kind, non-empty
// labels, at least one dataset, and every dataset's values matching the
// label count. It does not inspect the values themselves; use HasData for
// the all-zero check.
func (v VisualSpec) Validate() error {
	if !v.Kind.IsValid() {
		return fmt.Errorf("%w: unknown chart kind %q", ErrInvalidInput, string(v.Kind))
	}
	if len(v.Labels) == 0 {
		return fmt.Errorf("%w: chart has no labels", ErrInvalidInput)
	}
	if len(v.Datasets) == 0 {
		return fmt.Errorf("%w: chart has no datasets", ErrInvalidInput)
	}
	for _, ds := range v.Datasets {
		if len(ds.Values) != len(v.Labels) {
			return fmt.Errorf("%w: dataset %q has %d values for %d labels",
				ErrInvalidInput, ds.Label, len(ds.Values), len(v.Labels))
		}
	}
	return nil
}

// HasData reports whether any value across all datasets is non-zero.
// An all-zero spec is treated as "no real data" and is not rendered.
func (v VisualSpec) HasData() bool {
	for _, ds := range v.Datasets {
		for _, val := range ds.Values {
			if val != 0 {
				return true
			}
		}
	}
	return false
}
