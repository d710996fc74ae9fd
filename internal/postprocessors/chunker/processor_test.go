package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

func singleSegment(text string) []domain.Segment {
	return []domain.Segment{{Text: text}}
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("custom overlap", func(t *testing.T) {
		p := New(WithOverlap(50))
		if p.overlap != 50 {
			t.Errorf("expected overlap 50, got %d", p.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_Process_NoSegments(t *testing.T) {
	p := New()
	doc := &domain.Document{ID: "test-doc"}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks without segments, got %d", len(chunks))
	}
}

func TestProcessor_Process_SmallSegment(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{ID: "test-doc", URI: "/materials/small.txt"}

	chunks, err := p.Process(context.Background(), doc, singleSegment("This is a small piece of content."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for small content, got %d", len(chunks))
	}

	c := chunks[0]
	if c.DocumentID != doc.ID {
		t.Errorf("expected DocumentID '%s', got '%s'", doc.ID, c.DocumentID)
	}
	if c.Source != "small.txt" {
		t.Errorf("expected source 'small.txt', got '%s'", c.Source)
	}
	if c.Content != "This is a small piece of content." {
		t.Error("expected chunk content to match segment text")
	}
	if c.Position != 0 {
		t.Errorf("expected position 0, got %d", c.Position)
	}
	if c.Weight != DefaultChunkWeight {
		t.Errorf("expected weight %v, got %v", DefaultChunkWeight, c.Weight)
	}
}

func TestProcessor_Process_LargeSegment(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))

	content := strings.Repeat("x", 250)
	doc := &domain.Document{ID: "test-doc", URI: "/m/large.txt"}

	chunks, err := p.Process(context.Background(), doc, singleSegment(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Verify chunk IDs are unique
	seenIDs := make(map[string]bool)
	for _, chunk := range chunks {
		if seenIDs[chunk.ID] {
			t.Errorf("duplicate chunk ID: %s", chunk.ID)
		}
		seenIDs[chunk.ID] = true
	}

	// Verify positions are sequential
	for i, chunk := range chunks {
		if chunk.Position != i {
			t.Errorf("expected position %d, got %d", i, chunk.Position)
		}
	}

	// Verify first chunk is full size
	if len(chunks[0].Content) != 100 {
		t.Errorf("expected first chunk size 100, got %d", len(chunks[0].Content))
	}
}

// Concatenating each chunk's non-overlap region must reconstruct the
// original text for unstructured input.
func TestProcessor_Process_CoverageReconstruction(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
	}{
		{"ascii", 10, 3, "The quick brown fox jumps over the lazy dog repeatedly."},
		{"exact multiple", 8, 2, strings.Repeat("abcdef", 8)},
		{"cjk", 6, 2, "动力电池市场规模在过去五年间持续扩大，出货量逐年上升。"},
		{"shorter than window", 100, 10, "tiny"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := New(WithChunkSize(tc.size), WithOverlap(tc.overlap))
			doc := &domain.Document{ID: "doc", URI: "/m/f.txt"}

			chunks, err := p.Process(context.Background(), doc, singleSegment(tc.text))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var sb strings.Builder
			for i, c := range chunks {
				runes := []rune(c.Content)
				if i == 0 {
					sb.WriteString(c.Content)
					continue
				}
				if len(runes) > tc.overlap {
					sb.WriteString(string(runes[tc.overlap:]))
				}
			}
			if sb.String() != tc.text {
				t.Errorf("reconstruction mismatch:\nwant %q\ngot  %q", tc.text, sb.String())
			}
		})
	}
}

func TestProcessor_Process_HeadersCarried(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2))
	doc := &domain.Document{ID: "doc", URI: "/m/report.md", SourceType: domain.SourceTypePrerendered}

	segments := []domain.Segment{
		{Text: strings.Repeat("a", 25), Headers: []string{"Market", "APAC"}},
		{Text: "short", Headers: []string{"Market", "EMEA"}},
	}

	chunks, err := p.Process(context.Background(), doc, segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	for _, c := range chunks[:len(chunks)-1] {
		if c.Headers == nil {
			t.Fatal("expected headers on chunk")
		}
	}
	if got := chunks[0].Breadcrumb(); got != "report.md > Market > APAC" {
		t.Errorf("unexpected breadcrumb: %s", got)
	}
	last := chunks[len(chunks)-1]
	if got := last.Breadcrumb(); got != "report.md > Market > EMEA" {
		t.Errorf("unexpected breadcrumb: %s", got)
	}
	if last.Metadata["source_type"] != domain.SourceTypePrerendered {
		t.Error("expected source_type metadata on chunk")
	}
}

func TestProcessor_Process_NilDocument(t *testing.T) {
	p := New()
	_, err := p.Process(context.Background(), nil, singleSegment("x"))
	if err == nil {
		t.Fatal("expected error for nil document")
	}
}
