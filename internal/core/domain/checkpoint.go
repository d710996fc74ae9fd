package domain

import "time"

// Checkpoint records run progress at a chapter boundary. The latest
// checkpoint is enough to resume a run: it carries the shared contexts
// every unit in the next chapter reads.
type Checkpoint struct {
	// LastCompletedChapterIndex is the zero-based index of the chapter
	// that finished last.
	LastCompletedChapterIndex int `json:"lastCompletedChapterIndex"`

	// LastCompletedChapterTitle is that chapter's title.
	LastCompletedChapterTitle string `json:"lastCompletedChapterTitle"`

	// ExecutiveSummary is the rolling summary of the completed chapter,
	// read by every unit in the following chapter.
	ExecutiveSummary string `json:"executiveSummary"`

	// GlobalThesis is the fixed thesis statement shared by all units.
	GlobalThesis string `json:"globalThesis"`

	// Timestamp is when the checkpoint was written.
	Timestamp time.Time `json:"timestamp"`
}
