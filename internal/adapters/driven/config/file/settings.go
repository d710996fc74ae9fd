package file

import (
	"os"
	"time"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// Environment fallbacks for credentials not stored in the config file.
const (
	envGeminiAPIKey = "GEMINI_API_KEY"
	envTavilyAPIKey = "TAVILY_API_KEY"
)

// LoadSettings folds the config store over DefaultSettings. Keys absent
// from the store keep their defaults; API keys fall back to environment
// variables when the file carries none.
func LoadSettings(store driven.ConfigStore) domain.Settings {
	s := domain.DefaultSettings()

	if v := store.GetInt("chunking.size"); v > 0 {
		s.Chunking.Size = v
	}
	if v := store.GetInt("chunking.overlap"); v > 0 {
		s.Chunking.Overlap = v
	}

	if v := store.GetInt("retrieval.top_k"); v > 0 {
		s.Retrieval.TopK = v
	}
	if v := store.GetFloat("retrieval.keyword_bonus"); v > 0 {
		s.Retrieval.KeywordBonus = v
	}

	if v := store.GetString("evidence.cache_dir"); v != "" {
		s.Evidence.CacheDir = v
	}
	if v := store.GetInt("evidence.ttl_hours"); v > 0 {
		s.Evidence.TTL = time.Duration(v) * time.Hour
	}
	if v := store.GetInt("evidence.max_retries"); v > 0 {
		s.Evidence.MaxRetries = v
	}
	if v := store.GetStringSlice("evidence.trigger_terms"); v != nil {
		s.Evidence.TriggerTerms = v
	}

	if v := store.GetFloat("quality.threshold"); v > 0 {
		s.Quality.Threshold = v
	}
	if v := store.GetInt("quality.max_rounds"); v > 0 {
		s.Quality.MaxRounds = v
	}

	s.Generator.Provider = domain.Provider(store.GetString("generator.provider"))
	s.Generator.Model = store.GetString("generator.model")
	s.Generator.BaseURL = store.GetString("generator.base_url")
	s.Generator.APIKey = firstNonEmpty(store.GetString("generator.api_key"), os.Getenv(envGeminiAPIKey))
	s.Generator.RequestsPerMinute = store.GetInt("generator.requests_per_minute")

	s.Embedding.Provider = domain.Provider(store.GetString("embedding.provider"))
	s.Embedding.Model = store.GetString("embedding.model")
	s.Embedding.BaseURL = store.GetString("embedding.base_url")
	s.Embedding.APIKey = firstNonEmpty(store.GetString("embedding.api_key"), os.Getenv(envGeminiAPIKey))

	s.WebSearch.APIKey = firstNonEmpty(store.GetString("websearch.api_key"), os.Getenv(envTavilyAPIKey))
	s.WebSearch.BaseURL = store.GetString("websearch.base_url")
	if v := store.GetInt("websearch.max_results"); v > 0 {
		s.WebSearch.MaxResults = v
	}
	s.WebSearch.RequestsPerMinute = store.GetInt("websearch.requests_per_minute")

	if v := store.GetString("workspace.out_dir"); v != "" {
		s.Workspace.OutDir = v
	}
	if v := store.GetString("workspace.database_path"); v != "" {
		s.Workspace.DatabasePath = v
	}

	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
