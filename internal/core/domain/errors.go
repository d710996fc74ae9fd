package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown normaliser or renderer type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoEvidence indicates neither local retrieval nor external lookup
	// produced any supporting material for a writing unit. Unit-level
	// fatal: the unit is failed, siblings continue.
	ErrNoEvidence = errors.New("no evidence available")

	// ErrEmptyDocument indicates a source file had no usable content.
	// The file is recorded as failed and ingestion continues.
	ErrEmptyDocument = errors.New("empty document")

	// ErrGeneratorUnavailable indicates the generation backend is not
	// configured or unreachable.
	ErrGeneratorUnavailable = errors.New("generation backend unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Retrieval degrades to keyword-only scoring.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSearchBackendUnavailable indicates the external evidence-lookup
	// backend is not configured. Lookups return empty results.
	ErrSearchBackendUnavailable = errors.New("search backend unavailable")

	// Backend call errors.

	// ErrAuthRequired indicates the backend rejected the credential.
	// Never retried; warned once per process.
	ErrAuthRequired = errors.New("authentication required")

	// ErrRateLimited indicates the backend rate limit was exceeded.
	// Treated as transient and retried with backoff.
	ErrRateLimited = errors.New("rate limited")

	// ErrBackendTransient indicates a retriable backend failure
	// (network error, 5xx, timeout).
	ErrBackendTransient = errors.New("transient backend failure")

	// Rendering errors.

	// ErrRenderUnsupported indicates a renderer cannot express the
	// requested chart kind. Soft failure: the cascade tries the next
	// renderer rather than aborting.
	ErrRenderUnsupported = errors.New("chart kind not supported by renderer")
)
