package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driving"
	"github.com/draftmill/draftmill-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrieveService = (*RetrievalService)(nil)

// termPattern extracts query terms: Han runs for non-space-delimited
// script, alphanumeric runs for everything else.
var termPattern = regexp.MustCompile(`[\p{Han}]+|[a-zA-Z0-9]+`)

// lengthDamping is the chunk-length scale in the combined score. Longer
// chunks are dampened so dense short evidence outranks padded long text.
const lengthDamping = 5000.0

// RetrievalService ranks ingested chunks against relevance queries with a
// hybrid keyword + vector score. The chunk slice is a read-only view owned
// by the ingest service; the index is built once per run.
//
// Any vector failure permanently downgrades the strategy to keyword-only
// for the rest of the session, logged once. Downgrade never surfaces to
// callers.
type RetrievalService struct {
	chunks   []domain.Chunk
	embedder driven.EmbeddingService
	settings domain.RetrievalSettings

	mu         sync.Mutex
	strategy   domain.RetrievalStrategy
	embeddings [][]float32
	built      bool
}

// NewRetrievalService creates a retrieval index over chunks.
// The embedder is optional; without it the strategy is keyword-only from
// the start.
func NewRetrievalService(chunks []domain.Chunk, embedder driven.EmbeddingService, settings domain.RetrievalSettings) *RetrievalService {
	strategy := domain.StrategyKeywordOnly
	if embedder != nil {
		strategy = domain.StrategyHybrid
	}
	return &RetrievalService{
		chunks:   chunks,
		embedder: embedder,
		settings: settings,
		strategy: strategy,
	}
}

// Strategy reports the active retrieval strategy, reflecting any
// permanent downgrade.
func (s *RetrievalService) Strategy() domain.RetrievalStrategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy
}

// Retrieve returns the topK chunks ranked by combined score, ties broken
// by insertion order. Chunks scoring zero are dropped.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, topK int) ([]domain.ScoredChunk, error) {
	terms := tokenise(query)
	if len(terms) == 0 || len(s.chunks) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = s.settings.TopK
	}

	keyword := make([]float64, len(s.chunks))
	for i, c := range s.chunks {
		keyword[i] = combineScore(keywordHits(c.Content, terms), c.Weight, len([]rune(c.Content)))
	}

	scores := keyword
	if vector := s.vectorScores(ctx, query); vector != nil {
		scores = make([]float64, len(s.chunks))
		for i := range s.chunks {
			scores[i] = vector[i] + s.settings.KeywordBonus*keyword[i]
		}
	}

	ranked := make([]domain.ScoredChunk, 0, len(s.chunks))
	for i, c := range s.chunks {
		if scores[i] > 0 {
			ranked = append(ranked, domain.ScoredChunk{Chunk: c, Score: scores[i]})
		}
	}

	// Stable: equal scores keep chunk insertion order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

// EvidenceBlock formats the topK results into a citation-annotated
// evidence text. Returns empty string when nothing scores above zero.
func (s *RetrievalService) EvidenceBlock(ctx context.Context, query string, topK int) (string, error) {
	ranked, err := s.Retrieve(ctx, query, topK)
	if err != nil {
		return "", err
	}
	if len(ranked) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for i, sc := range ranked {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[Evidence %d] %s\n%s", i+1, sc.Chunk.Breadcrumb(), sc.Chunk.Content)
	}
	return sb.String(), nil
}

// vectorScores returns per-chunk cosine similarity against the query, or
// nil when vector retrieval is unavailable for this query. A backend
// failure downgrades the session permanently; a degenerate all-zero query
// vector only skips this query.
func (s *RetrievalService) vectorScores(ctx context.Context, query string) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.strategy != domain.StrategyHybrid {
		return nil
	}
	if err := s.buildLocked(ctx); err != nil {
		s.downgradeLocked(err)
		return nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.downgradeLocked(err)
		return nil
	}
	if isZeroVector(queryVec) {
		logger.Debug("Degenerate query vector, keyword scoring for this query")
		return nil
	}

	scores := make([]float64, len(s.chunks))
	for i, vec := range s.embeddings {
		scores[i] = cosineSimilarity(queryVec, vec)
	}
	return scores
}

// buildLocked embeds every chunk once. Callers hold s.mu.
func (s *RetrievalService) buildLocked(ctx context.Context) error {
	if s.built {
		return nil
	}

	texts := make([]string, len(s.chunks))
	for i, c := range s.chunks {
		texts[i] = c.Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(s.chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(embeddings), len(s.chunks))
	}

	s.embeddings = embeddings
	s.built = true
	logger.Debug("Vector index built: %d chunks", len(s.chunks))
	return nil
}

// downgradeLocked permanently switches to keyword-only. Callers hold s.mu.
func (s *RetrievalService) downgradeLocked(err error) {
	if s.strategy == domain.StrategyKeywordOnly {
		return
	}
	s.strategy = domain.StrategyKeywordOnly
	logger.Warn("Vector retrieval disabled for this session: %v", err)
}

// tokenise extracts the query's term set.
func tokenise(query string) []string {
	return termPattern.FindAllString(strings.ToLower(query), -1)
}

// keywordHits counts query terms appearing as substrings in the text.
func keywordHits(text string, terms []string) float64 {
	lower := strings.ToLower(text)
	hits := 0.0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			hits++
		}
	}
	return hits
}

// combineScore folds a base relevance score, the chunk weight, and the
// chunk length into the final ranking score.
func combineScore(base, weight float64, length int) float64 {
	return base * weight / (1 + float64(length)/lengthDamping)
}

// cosineSimilarity between two vectors; zero when either is degenerate.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// isZeroVector reports whether every component is zero.
func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
