package markdown

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxHeaderDepth bounds the breadcrumb: headings deeper than H3 stay in
// the segment body.
const maxHeaderDepth = 3

// Normaliser handles Markdown documents. It parses the goldmark AST and
// splits content into header-scoped segments (levels 1-3), each carrying
// its header path for citation breadcrumbs.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Normalise converts a markdown file into a document plus header-scoped
// segments. Markdown arriving here was exported by an external renderer,
// so the document is tagged as pre-rendered.
func (n *Normaliser) Normalise(_ context.Context, path string, content []byte) (*driven.NormaliseResult, error) {
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	segments := splitByHeaders(content)
	title := extractTitle(segments, path)

	doc := domain.Document{
		ID:         uuid.New().String(),
		URI:        path,
		Title:      title,
		Content:    string(content),
		SourceType: domain.SourceTypePrerendered,
		Metadata: map[string]any{
			"format": "markdown",
		},
		LoadedAt: time.Now(),
	}

	return &driven.NormaliseResult{
		Document: doc,
		Segments: segments,
	}, nil
}

// splitByHeaders walks the top-level AST and groups block content under
// the current header path. Headings deeper than maxHeaderDepth are kept
// as body text.
func splitByHeaders(source []byte) []domain.Segment {
	md := goldmark.New()
	reader := text.NewReader(source)
	root := md.Parser().Parse(reader)

	var segments []domain.Segment
	var headers []string
	var body []string

	flush := func() {
		if len(body) == 0 {
			return
		}
		segments = append(segments, domain.Segment{
			Text:    strings.TrimSpace(strings.Join(body, "\n\n")),
			Headers: compactHeaders(headers),
		})
		body = nil
	}

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok && h.Level <= maxHeaderDepth {
			flush()
			title := string(h.Text(source))
			if h.Level-1 < len(headers) {
				headers = headers[:h.Level-1]
			}
			for len(headers) < h.Level-1 {
				headers = append(headers, "")
			}
			headers = append(headers, title)
			continue
		}
		if txt := blockSource(node, source); txt != "" {
			body = append(body, txt)
		}
	}
	flush()

	return segments
}

// blockSource reassembles the raw source text of a block node, including
// nested blocks like list items and table rows.
func blockSource(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// compactHeaders copies the header stack, dropping placeholders left by
// skipped levels (an H3 directly under an H1).
func compactHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

// extractTitle prefers the first H1 breadcrumb, falling back to the
// cleaned filename.
func extractTitle(segments []domain.Segment, path string) string {
	for _, seg := range segments {
		if len(seg.Headers) > 0 && seg.Headers[0] != "" {
			return seg.Headers[0]
		}
	}
	filename := filepath.Base(path)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
