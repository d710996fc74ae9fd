package plaintext

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents. Plain text carries no
// structural markup, so the whole document becomes a single segment with
// no header path.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt", ".text", ".csv", ".log"}
}

// Normalise converts a raw text file into a single-segment document.
func (n *Normaliser) Normalise(_ context.Context, path string, content []byte) (*driven.NormaliseResult, error) {
	text := string(content)
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	doc := domain.Document{
		ID:         uuid.New().String(),
		URI:        path,
		Title:      extractTitle(path),
		Content:    text,
		SourceType: domain.SourceTypeParsed,
		Metadata: map[string]any{
			"format": "plaintext",
		},
		LoadedAt: time.Now(),
	}

	return &driven.NormaliseResult{
		Document: doc,
		Segments: []domain.Segment{{Text: text}},
	}, nil
}

// extractTitle extracts a human-readable title from a file path.
func extractTitle(path string) string {
	filename := filepath.Base(path)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
