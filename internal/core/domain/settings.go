package domain

import "time"

const unknownDescription = "Unknown"

// Provider identifies an AI service provider for generation or embeddings.
type Provider string

// Available providers.
const (
	// ProviderGemini is the Google Gemini cloud API.
	ProviderGemini Provider = "gemini"

	// ProviderOllama is a local Ollama instance.
	ProviderOllama Provider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderGemini, ProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p Provider) RequiresAPIKey() bool {
	return p == ProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p Provider) IsLocal() bool {
	return p == ProviderOllama
}

// String returns the string representation.
func (p Provider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p Provider) Description() string {
	switch p {
	case ProviderGemini:
		return "Gemini (cloud)"
	case ProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// ChunkingSettings holds ingestion chunking configuration.
type ChunkingSettings struct {
	// Size is the window size in characters.
	Size int

	// Overlap is the repeated context between consecutive windows.
	Overlap int
}

// RetrievalSettings holds local retrieval configuration.
type RetrievalSettings struct {
	// TopK is how many ranked chunks enter the evidence block.
	TopK int

	// KeywordBonus scales the keyword score when combined with vector
	// similarity. Keyword acts as a tie-breaker, not the primary signal.
	KeywordBonus float64
}

// EvidenceSettings holds external-lookup cache configuration.
type EvidenceSettings struct {
	// CacheDir is where evidence records are persisted.
	CacheDir string

	// TTL bounds how long a cached record stays fresh.
	TTL time.Duration

	// MaxRetries caps attempts against the lookup backend per call.
	MaxRetries int

	// TriggerTerms gate whether a query reaches the backend at all.
	// An empty list disables gating.
	TriggerTerms []string
}

// QualitySettings holds the quality gate configuration.
type QualitySettings struct {
	// Threshold is the score a unit must clear to finalize early.
	Threshold float64

	// MaxRounds caps refinement iterations per unit.
	MaxRounds int
}

// GeneratorSettings holds generation backend configuration.
type GeneratorSettings struct {
	// Provider is the generation service provider.
	Provider Provider

	// Model is the generation model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini).
	APIKey string

	// RequestsPerMinute throttles calls to the backend.
	// Zero disables throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the generation backend is set up.
func (g GeneratorSettings) IsConfigured() bool {
	if !g.Provider.IsValid() {
		return false
	}
	if g.Provider.RequiresAPIKey() && g.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
// Embeddings are optional; retrieval degrades to keyword-only without them.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider Provider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// WebSearchSettings holds external evidence-lookup backend configuration.
type WebSearchSettings struct {
	// APIKey authenticates against the lookup backend.
	APIKey string

	// BaseURL overrides the backend endpoint. Empty uses the default.
	BaseURL string

	// MaxResults caps results merged into one evidence text.
	MaxResults int

	// RequestsPerMinute throttles calls to the backend.
	// Zero disables throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the lookup backend is set up.
func (w WebSearchSettings) IsConfigured() bool {
	return w.APIKey != ""
}

// WorkspaceSettings holds output and persistence locations.
type WorkspaceSettings struct {
	// OutDir is where finalized sections and artifacts are written.
	OutDir string

	// DatabasePath is the SQLite file backing units and checkpoints.
	DatabasePath string
}

// Settings holds all application settings. Constructed once and passed
// into every component constructor.
type Settings struct {
	// Chunking holds ingestion chunking settings.
	Chunking ChunkingSettings

	// Retrieval holds local retrieval settings.
	Retrieval RetrievalSettings

	// Evidence holds external-lookup cache settings.
	Evidence EvidenceSettings

	// Quality holds quality gate settings.
	Quality QualitySettings

	// Generator holds generation backend settings.
	Generator GeneratorSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// WebSearch holds evidence-lookup backend settings.
	WebSearch WebSearchSettings

	// Workspace holds output and persistence locations.
	Workspace WorkspaceSettings
}

// DefaultSettings returns settings with sensible defaults.
// Backends (Generator, Embedding, WebSearch) are left unconfigured;
// users supply them via the config file or flags.
func DefaultSettings() Settings {
	return Settings{
		Chunking: ChunkingSettings{
			Size:    800,
			Overlap: 100,
		},
		Retrieval: RetrievalSettings{
			TopK:         5,
			KeywordBonus: 0.1,
		},
		Evidence: EvidenceSettings{
			CacheDir:   "search_cache",
			TTL:        24 * time.Hour,
			MaxRetries: 3,
			TriggerTerms: []string{
				"latest", "market", "data", "policy", "trend", "forecast",
				"最新", "市场", "数据", "政策", "趋势", "预测",
			},
		},
		Quality: QualitySettings{
			Threshold: 8.0,
			MaxRounds: 4,
		},
		Generator: GeneratorSettings{},
		Embedding: EmbeddingSettings{},
		WebSearch: WebSearchSettings{
			MaxResults: 5,
		},
		Workspace: WorkspaceSettings{
			OutDir:       "report",
			DatabasePath: "draftmill.db",
		},
	}
}
