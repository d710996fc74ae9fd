package driven

import (
	"context"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

// Normaliser transforms raw material files into segmented documents.
// Each normaliser handles specific file extensions.
type Normaliser interface {
	// SupportedExtensions returns the lowercase extensions this
	// normaliser handles, including the leading dot.
	SupportedExtensions() []string

	// Normalise transforms raw file content into a document plus its
	// structure-aware segments. Documents without structural markup
	// yield a single segment.
	Normalise(ctx context.Context, path string, content []byte) (*NormaliseResult, error)
}

// NormaliserRegistry selects the normaliser for a file.
type NormaliserRegistry interface {
	// ForFile returns the normaliser handling the file's extension.
	// Returns domain.ErrUnsupportedType for unknown extensions.
	ForFile(path string) (Normaliser, error)
}

// NormaliseResult contains the output of normalisation.
// Window chunking of the segments is handled by the chunker, not here.
type NormaliseResult struct {
	// Document is the normalised document with Content populated.
	Document domain.Document

	// Segments are the structure-aware slices of the document in
	// original order.
	Segments []domain.Segment
}
