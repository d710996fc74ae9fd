package driven

import "github.com/draftmill/draftmill-cli/internal/core/domain"

// EvidenceStore persists cached external-lookup records keyed by query
// fingerprint. At most one record exists per fingerprint; writes replace.
type EvidenceStore interface {
	// Load returns the record for a fingerprint.
	// Returns domain.ErrNotFound when no record exists.
	Load(fingerprint string) (*domain.EvidenceRecord, error)

	// Save writes a record under a fingerprint, replacing any existing
	// one. Writes must be atomic so concurrent readers never observe a
	// partial record.
	Save(fingerprint string, record domain.EvidenceRecord) error
}
