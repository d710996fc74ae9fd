package driven

import "context"

// SearchBackend performs external evidence lookups. This is an optional
// service - when nil, evidence comes from local materials only.
//
// Implementations classify failures through the domain error taxonomy:
// domain.ErrAuthRequired for credential rejections (never retried),
// domain.ErrRateLimited and domain.ErrBackendTransient for retriable
// failures. The evidence cache in front of this port owns retry policy;
// implementations perform a single attempt per call.
type SearchBackend interface {
	// Lookup returns merged evidence text for a query. An empty string
	// with a nil error means the backend genuinely found nothing.
	Lookup(ctx context.Context, query string) (string, error)

	// Name identifies the backend in logs.
	Name() string

	// Close releases resources.
	Close() error
}
