package driven

import "context"

// Generator produces text from prompts. It is the pipeline's only source
// of prose: drafts, edits, summaries, and structured visual extraction all
// go through it.
//
// Implementations may include:
//   - Gemini (cloud)
//   - Ollama (local models)
type Generator interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup before committing to a run.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSONMode asks the backend for a single well-formed JSON object.
	// Backends without native JSON output prepend a format instruction.
	JSONMode bool
}
