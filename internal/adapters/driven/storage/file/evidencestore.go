// Package file provides filesystem-backed persistence for cached
// evidence records.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// Ensure EvidenceStore implements the interface.
var _ driven.EvidenceStore = (*EvidenceStore)(nil)

// EvidenceStore persists evidence records as one JSON file per query
// fingerprint. Writes go through a temp file and rename so a crash never
// leaves a partial record behind.
type EvidenceStore struct {
	dir string
}

// NewEvidenceStore creates an evidence store rooted at dir, creating it
// if needed.
func NewEvidenceStore(dir string) (*EvidenceStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache folder: %w", err)
	}
	return &EvidenceStore{dir: dir}, nil
}

// Load returns the record for a fingerprint.
func (s *EvidenceStore) Load(fingerprint string) (*domain.EvidenceRecord, error) {
	data, err := os.ReadFile(s.path(fingerprint))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}

	var record domain.EvidenceRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// A corrupt record is indistinguishable from a missing one to
		// the cache; treat it as a miss so the lookup refreshes it.
		return nil, fmt.Errorf("%w: corrupt record for %s: %v", domain.ErrNotFound, fingerprint, err)
	}
	return &record, nil
}

// Save writes a record under a fingerprint, replacing any existing one.
func (s *EvidenceStore) Save(fingerprint string, record domain.EvidenceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	// Temp file in the same folder so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(s.dir, fingerprint+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp record: %w", err)
	}

	if err := os.Rename(tmpName, s.path(fingerprint)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish record: %w", err)
	}
	return nil
}

// path is the record file for a fingerprint.
func (s *EvidenceStore) path(fingerprint string) string {
	return filepath.Join(s.dir, fingerprint+".json")
}
