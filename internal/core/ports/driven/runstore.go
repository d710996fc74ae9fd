package driven

import "github.com/draftmill/draftmill-cli/internal/core/domain"

// UnitStore persists finalized and failed units so an interrupted run can
// resume without regenerating completed work. Optional; when nil every run
// starts from scratch.
type UnitStore interface {
	// SaveUnit writes a unit keyed by its fully-qualified path,
	// replacing any existing row.
	SaveUnit(unit domain.GenerationUnit) error

	// GetUnit returns the persisted unit for a path.
	// Returns domain.ErrNotFound when none exists.
	GetUnit(path string) (*domain.GenerationUnit, error)

	// ListTerminal returns the paths of all persisted units in a
	// terminal state, in insertion order.
	ListTerminal() ([]string, error)
}

// CheckpointStore persists chapter-boundary checkpoints. The latest
// checkpoint carries the shared contexts a resumed run needs.
type CheckpointStore interface {
	// SaveCheckpoint appends a checkpoint.
	SaveCheckpoint(cp domain.Checkpoint) error

	// LatestCheckpoint returns the most recent checkpoint.
	// Returns domain.ErrNotFound when no checkpoint exists.
	LatestCheckpoint() (*domain.Checkpoint, error)
}
