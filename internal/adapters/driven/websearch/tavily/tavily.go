// Package tavily provides an external evidence-lookup adapter using the
// Tavily search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.SearchBackend = (*Backend)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.tavily.com"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxResults = 5
)

// Config holds configuration for the Tavily backend.
type Config struct {
	// APIKey authenticates against the Tavily API. Required.
	APIKey string

	// BaseURL overrides the API endpoint (default: https://api.tavily.com).
	BaseURL string

	// MaxResults caps results merged into one evidence text (default: 5).
	MaxResults int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerMinute throttles calls to the backend.
	// Zero disables throttling.
	RequestsPerMinute int
}

// Backend performs evidence lookups against Tavily. Each Lookup is a
// single attempt; retry policy lives with the caller.
type Backend struct {
	client     *http.Client
	apiKey     string
	baseURL    string
	maxResults int
	limiter    *rate.Limiter
}

// searchRequest is the Tavily /search request format.
type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

// searchResponse is the Tavily /search response format.
type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// NewBackend creates a new Tavily backend.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tavily: %w: API key is required", domain.ErrSearchBackendUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	return &Backend{
		client:     &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		maxResults: cfg.MaxResults,
		limiter:    limiter,
	}, nil
}

// Lookup returns merged evidence text for a query. Failures are
// classified through the domain error taxonomy so the caller can decide
// retry behaviour.
func (b *Backend) Lookup(ctx context.Context, query string) (string, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("tavily: rate limit wait: %w", err)
		}
	}

	reqBody := searchRequest{
		APIKey:        b.apiKey,
		Query:         query,
		MaxResults:    b.maxResults,
		IncludeAnswer: true,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("tavily: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		b.baseURL+"/search",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("tavily: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tavily: %w: %v", domain.ErrBackendTransient, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, resp.Body); err != nil {
		return "", err
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", fmt.Errorf("tavily: decode response: %w", err)
	}

	return mergeResults(searchResp), nil
}

// classifyStatus maps HTTP status codes onto the domain error taxonomy.
func classifyStatus(status int, body io.Reader) error {
	if status == http.StatusOK {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(body, 512))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("tavily: %w (status %d): %s", domain.ErrAuthRequired, status, detail)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("tavily: %w (status %d): %s", domain.ErrRateLimited, status, detail)
	case status >= 500:
		return fmt.Errorf("tavily: %w (status %d): %s", domain.ErrBackendTransient, status, detail)
	default:
		return fmt.Errorf("tavily: unexpected status %d: %s", status, detail)
	}
}

// mergeResults folds the answer and individual results into one evidence
// text with source attribution.
func mergeResults(resp searchResponse) string {
	var sb strings.Builder
	if resp.Answer != "" {
		sb.WriteString(resp.Answer)
	}
	for _, r := range resp.Results {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%s (%s):\n%s", r.Title, r.URL, content)
	}
	return sb.String()
}

// Name identifies the backend in logs.
func (b *Backend) Name() string {
	return "tavily"
}

// Close releases resources.
func (b *Backend) Close() error {
	return nil
}
