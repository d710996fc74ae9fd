package domain

import "time"

// UnitState tracks a writing unit's progress through the pipeline.
type UnitState string

// Unit states in processing order. Finalized and Failed are terminal.
const (
	UnitStateEmpty            UnitState = "empty"
	UnitStateDrafting         UnitState = "drafting"
	UnitStateExtractingVisual UnitState = "extracting_visual"
	UnitStateRendering        UnitState = "rendering"
	UnitStateEditing          UnitState = "editing"
	UnitStateEvaluating       UnitState = "evaluating"
	UnitStateRefining         UnitState = "refining"
	UnitStateFinalized        UnitState = "finalized"
	UnitStateFailed           UnitState = "failed"
)

// IsValid returns true if the state is recognised.
func (s UnitState) IsValid() bool {
	switch s {
	case UnitStateEmpty, UnitStateDrafting, UnitStateExtractingVisual,
		UnitStateRendering, UnitStateEditing, UnitStateEvaluating,
		UnitStateRefining, UnitStateFinalized, UnitStateFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for states no transition leaves.
func (s UnitState) IsTerminal() bool {
	return s == UnitStateFinalized || s == UnitStateFailed
}

// String returns the string representation.
func (s UnitState) String() string {
	return string(s)
}

// CanTransitionTo reports whether next is a legal successor of s.
// Any non-terminal state may transition to Failed.
func (s UnitState) CanTransitionTo(next UnitState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == UnitStateFailed {
		return true
	}
	switch s {
	case UnitStateEmpty:
		return next == UnitStateDrafting
	case UnitStateDrafting:
		return next == UnitStateExtractingVisual
	case UnitStateExtractingVisual:
		return next == UnitStateRendering
	case UnitStateRendering:
		return next == UnitStateEditing
	case UnitStateEditing:
		return next == UnitStateEvaluating
	case UnitStateEvaluating:
		return next == UnitStateRefining || next == UnitStateFinalized
	case UnitStateRefining:
		return next == UnitStateEditing
	default:
		return false
	}
}

// GenerationUnit is one leaf writing unit of the report, processed
// end-to-end by the pipeline. Exactly one unit maps to one leaf outline
// node; only the pipeline mutates it.
type GenerationUnit struct {
	// ID is the unique identifier for the unit.
	ID string

	// ChapterTitle, SectionTitle, SubsectionTitle locate the unit in the
	// outline. SubsectionTitle is empty when a section has no subsections.
	ChapterTitle    string
	SectionTitle    string
	SubsectionTitle string

	// State is the current pipeline state.
	State UnitState

	// DraftText is the evidence-grounded first draft.
	DraftText string

	// Visual is the extracted chart specification, nil when the draft
	// yielded no usable structured data.
	Visual *VisualSpec

	// ArtifactRef references the rendered artifact (file path or inline
	// markdown table). Empty when no chart was rendered.
	ArtifactRef string

	// FinalText is the polished prose recorded at finalization, or the
	// data-missing placeholder on failure.
	FinalText string

	// QualityScore is the last rubric score in [0,10].
	QualityScore float64

	// Feedback is the rubric's pipe-joined issue list for the last score.
	Feedback string

	// RefinementRound counts completed refinement iterations.
	// Never exceeds the configured maximum.
	RefinementRound int

	// FailReason records why a failed unit failed.
	FailReason string

	// UpdatedAt is when the unit last changed state.
	UpdatedAt time.Time
}

// Path returns the fully-qualified unit path used in failure lists and
// persistence keys, e.g. "Chapter > Section > Subsection".
func (u GenerationUnit) Path() string {
	p := u.ChapterTitle + " > " + u.SectionTitle
	if u.SubsectionTitle != "" {
		p += " > " + u.SubsectionTitle
	}
	return p
}

// Title returns the innermost title the unit writes about.
func (u GenerationUnit) Title() string {
	if u.SubsectionTitle != "" {
		return u.SubsectionTitle
	}
	return u.SectionTitle
}
