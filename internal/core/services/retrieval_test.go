package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

// fakeEmbedder is a deterministic embedding backend for index tests.
type fakeEmbedder struct {
	vectors    map[string][]float32
	batchErr   error
	embedErr   error
	embedCalls int
	batchCalls int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 0}
		}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int               { return 3 }
func (f *fakeEmbedder) ModelName() string             { return "fake-embed" }
func (f *fakeEmbedder) Ping(_ context.Context) error  { return nil }
func (f *fakeEmbedder) Close() error                  { return nil }

func retrievalChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "c1", Source: "market.md", Content: "battery market demand grew 34% in 2024", Weight: 1.0},
		{ID: "c2", Source: "notes.txt", Content: "lithium supply notes", Weight: 1.0},
		{ID: "c3", Source: "policy.md", Content: "subsidy policy for the battery market", Weight: 1.0},
	}
}

func TestTokenise(t *testing.T) {
	t.Run("mixed script", func(t *testing.T) {
		terms := tokenise("Battery 市场趋势 demand2024")
		assert.Equal(t, []string{"battery", "市场趋势", "demand2024"}, terms)
	})

	t.Run("punctuation only", func(t *testing.T) {
		assert.Empty(t, tokenise("--- !!! ..."))
	})
}

func TestCombineScore_Ordering(t *testing.T) {
	// Higher base and weight on a short chunk must outrank a weaker hit
	// on a long chunk.
	a := combineScore(8.5, 1.0, 500)
	b := combineScore(5.0, 0.8, 1000)
	c := combineScore(3.0, 0.5, 200)

	assert.Greater(t, a, b)
	assert.Greater(t, b, c)
	assert.InDelta(t, 7.727, a, 0.001)
	assert.InDelta(t, 3.333, b, 0.001)
	assert.InDelta(t, 1.442, c, 0.001)
}

func TestRetrievalService_KeywordOnly(t *testing.T) {
	settings := domain.DefaultSettings().Retrieval
	svc := NewRetrievalService(retrievalChunks(), nil, settings)

	assert.Equal(t, domain.StrategyKeywordOnly, svc.Strategy())

	t.Run("ranks by hits and drops zero scores", func(t *testing.T) {
		ranked, err := svc.Retrieve(context.Background(), "battery market", 10)
		require.NoError(t, err)
		require.Len(t, ranked, 2)
		assert.Equal(t, "c1", ranked[0].Chunk.ID)
		assert.Equal(t, "c3", ranked[1].Chunk.ID)
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		chunks := []domain.Chunk{
			{ID: "first", Content: "solar output", Weight: 1.0},
			{ID: "second", Content: "solar output", Weight: 1.0},
		}
		tied := NewRetrievalService(chunks, nil, settings)
		ranked, err := tied.Retrieve(context.Background(), "solar", 10)
		require.NoError(t, err)
		require.Len(t, ranked, 2)
		assert.Equal(t, "first", ranked[0].Chunk.ID)
		assert.Equal(t, "second", ranked[1].Chunk.ID)
	})

	t.Run("topK truncates", func(t *testing.T) {
		ranked, err := svc.Retrieve(context.Background(), "battery market", 1)
		require.NoError(t, err)
		assert.Len(t, ranked, 1)
	})

	t.Run("empty query returns nothing", func(t *testing.T) {
		ranked, err := svc.Retrieve(context.Background(), "!!!", 5)
		require.NoError(t, err)
		assert.Empty(t, ranked)
	})
}

func TestRetrievalService_Hybrid(t *testing.T) {
	chunks := retrievalChunks()
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		chunks[0].Content: {1, 0, 0},
		chunks[1].Content: {0, 1, 0},
		chunks[2].Content: {0.5, 0.5, 0},
		"battery demand":  {1, 0, 0},
	}}

	svc := NewRetrievalService(chunks, embedder, domain.DefaultSettings().Retrieval)
	assert.Equal(t, domain.StrategyHybrid, svc.Strategy())

	ranked, err := svc.Retrieve(context.Background(), "battery demand", 10)
	require.NoError(t, err)
	require.NotEmpty(t, ranked)
	assert.Equal(t, "c1", ranked[0].Chunk.ID)

	// The chunk index is built once and reused.
	_, err = svc.Retrieve(context.Background(), "battery demand", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.batchCalls)
}

func TestRetrievalService_DowngradePermanence(t *testing.T) {
	embedder := &fakeEmbedder{batchErr: errors.New("backend down")}
	svc := NewRetrievalService(retrievalChunks(), embedder, domain.DefaultSettings().Retrieval)

	ranked, err := svc.Retrieve(context.Background(), "battery market", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, ranked, "keyword results survive the vector failure")
	assert.Equal(t, domain.StrategyKeywordOnly, svc.Strategy())

	// The failed backend is never consulted again this session.
	_, err = svc.Retrieve(context.Background(), "battery market", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.batchCalls)
	assert.Equal(t, 0, embedder.embedCalls)
}

func TestRetrievalService_ZeroQueryVectorIsNotADowngrade(t *testing.T) {
	chunks := retrievalChunks()
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		chunks[0].Content: {1, 0, 0},
		chunks[1].Content: {0, 1, 0},
		chunks[2].Content: {0, 0, 1},
	}}
	svc := NewRetrievalService(chunks, embedder, domain.DefaultSettings().Retrieval)

	// Unknown query embeds to the zero vector: keyword scoring for this
	// query only, strategy stays hybrid.
	ranked, err := svc.Retrieve(context.Background(), "battery market", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, ranked)
	assert.Equal(t, domain.StrategyHybrid, svc.Strategy())
}

func TestRetrievalService_EvidenceBlock(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: "c1", Source: "market.md", Headers: []string{"Battery Market", "Demand"},
			Content: "demand grew 34% in 2024", Weight: 1.0},
	}
	svc := NewRetrievalService(chunks, nil, domain.DefaultSettings().Retrieval)

	t.Run("formats citations with breadcrumbs", func(t *testing.T) {
		block, err := svc.EvidenceBlock(context.Background(), "demand", 5)
		require.NoError(t, err)
		assert.Contains(t, block, "[Evidence 1] market.md > Battery Market > Demand")
		assert.Contains(t, block, "demand grew 34% in 2024")
	})

	t.Run("no matches yields empty block", func(t *testing.T) {
		block, err := svc.EvidenceBlock(context.Background(), "unrelated", 5)
		require.NoError(t, err)
		assert.Empty(t, block)
	})
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
}
