package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EvidenceRecord is a cached external-lookup result.
// One record exists per distinct query fingerprint at any time; records are
// read-only after creation until they expire.
type EvidenceRecord struct {
	// Query is the raw query string that produced this record.
	Query string `json:"query"`

	// Result is the evidence text returned by the lookup backend.
	Result string `json:"result"`

	// Timestamp is the creation time as epoch seconds.
	Timestamp float64 `json:"timestamp"`
}

// NewEvidenceRecord creates a record stamped with the given time.
func NewEvidenceRecord(query, result string, now time.Time) EvidenceRecord {
	return EvidenceRecord{
		Query:     query,
		Result:    result,
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
	}
}

// Age returns how long ago the record was created.
func (r EvidenceRecord) Age(now time.Time) time.Duration {
	created := time.Unix(0, int64(r.Timestamp*float64(time.Second)))
	return now.Sub(created)
}

// Expired reports whether the record is older than ttl.
// Expired records are lazily ignored on read, not eagerly deleted.
func (r EvidenceRecord) Expired(ttl time.Duration, now time.Time) bool {
	return r.Age(now) >= ttl
}

// QueryFingerprint returns the stable cache key for a query string.
// The same query text maps to the same key across process restarts.
func QueryFingerprint(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}
