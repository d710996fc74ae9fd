package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		path string
		ok   bool
	}{
		{"/materials/report.md", true},
		{"/materials/REPORT.MD", true},
		{"/materials/notes.txt", true},
		{"/materials/data.csv", true},
		{"/materials/deck.pptx", false},
		{"/materials/noext", false},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			n, err := r.ForFile(tc.path)
			if tc.ok {
				require.NoError(t, err)
				assert.NotNil(t, n)
			} else {
				assert.ErrorIs(t, err, domain.ErrUnsupportedType)
			}
		})
	}
}

func TestRegistryConflictLastWins(t *testing.T) {
	r := DefaultRegistry()
	n, err := r.ForFile("x.md")
	require.NoError(t, err)
	assert.NotNil(t, n)
	assert.NotEmpty(t, r.SupportedExtensions())
}
