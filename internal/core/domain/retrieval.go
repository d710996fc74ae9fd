package domain

// RetrievalStrategy identifies how the retrieval index scores chunks.
type RetrievalStrategy string

// Available retrieval strategies.
const (
	// StrategyKeywordOnly scores by query-term substring hits weighted by
	// chunk weight.
	StrategyKeywordOnly RetrievalStrategy = "keyword_only"

	// StrategyHybrid combines vector cosine similarity with a scaled
	// keyword score.
	StrategyHybrid RetrievalStrategy = "hybrid"
)

// String returns the string representation.
func (s RetrievalStrategy) String() string {
	return string(s)
}

// ScoredChunk is a single ranked retrieval hit.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the combined relevance score.
	Score float64
}
