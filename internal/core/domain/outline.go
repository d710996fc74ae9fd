package domain

import "fmt"

// Outline is the hierarchical writing plan consumed by the pipeline.
// It is produced upstream and read-only here.
type Outline struct {
	// Title is the report title.
	Title string `json:"title"`

	// Chapters are processed in document order.
	Chapters []OutlineChapter `json:"chapters"`
}

// OutlineChapter is one top-level chapter.
type OutlineChapter struct {
	Title    string           `json:"title"`
	Sections []OutlineSection `json:"sections"`
}

// OutlineSection is one section; its subsections are leaf titles.
type OutlineSection struct {
	Title       string   `json:"title"`
	Subsections []string `json:"subsections"`
}

// Validate checks the outline can drive a run: a title, at least one
// chapter, and no empty chapter or section titles.
func (o Outline) Validate() error {
	if o.Title == "" {
		return fmt.Errorf("%w: outline has no title", ErrInvalidInput)
	}
	if len(o.Chapters) == 0 {
		return fmt.Errorf("%w: outline has no chapters", ErrInvalidInput)
	}
	for i, ch := range o.Chapters {
		if ch.Title == "" {
			return fmt.Errorf("%w: chapter %d has no title", ErrInvalidInput, i+1)
		}
		if len(ch.Sections) == 0 {
			return fmt.Errorf("%w: chapter %q has no sections", ErrInvalidInput, ch.Title)
		}
		for _, sec := range ch.Sections {
			if sec.Title == "" {
				return fmt.Errorf("%w: chapter %q has a section with no title", ErrInvalidInput, ch.Title)
			}
		}
	}
	return nil
}

// Leaves returns one GenerationUnit skeleton per leaf node in document
// order. A section without subsections is itself a leaf.
func (o Outline) Leaves() []GenerationUnit {
	var units []GenerationUnit
	for _, ch := range o.Chapters {
		for _, sec := range ch.Sections {
			if len(sec.Subsections) == 0 {
				units = append(units, GenerationUnit{
					ChapterTitle: ch.Title,
					SectionTitle: sec.Title,
					State:        UnitStateEmpty,
				})
				continue
			}
			for _, sub := range sec.Subsections {
				units = append(units, GenerationUnit{
					ChapterTitle:    ch.Title,
					SectionTitle:    sec.Title,
					SubsectionTitle: sub,
					State:           UnitStateEmpty,
				})
			}
		}
	}
	return units
}
