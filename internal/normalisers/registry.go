package normalisers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"

	"github.com/draftmill/draftmill-cli/internal/normalisers/markdown"
	"github.com/draftmill/draftmill-cli/internal/normalisers/plaintext"
)

// Compile-time check that Registry implements the registry port.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry selects a normaliser by file extension.
type Registry struct {
	byExt map[string]driven.Normaliser
}

// NewRegistry builds a registry from the given normalisers. Later
// normalisers win extension conflicts.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byExt: make(map[string]driven.Normaliser)}
	for _, n := range normalisers {
		for _, ext := range n.SupportedExtensions() {
			r.byExt[strings.ToLower(ext)] = n
		}
	}
	return r
}

// DefaultRegistry returns a registry with the standard normalisers.
func DefaultRegistry() *Registry {
	return NewRegistry(plaintext.New(), markdown.New())
}

// ForFile returns the normaliser handling the file's extension.
// Returns domain.ErrUnsupportedType for unknown extensions.
func (r *Registry) ForFile(path string) (driven.Normaliser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	n, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no normaliser for %q", domain.ErrUnsupportedType, ext)
	}
	return n, nil
}

// SupportedExtensions returns every registered extension.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
