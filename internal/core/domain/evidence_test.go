package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryFingerprint(t *testing.T) {
	a := QueryFingerprint("solid state battery 2025 market size")
	b := QueryFingerprint("solid state battery 2025 market size")
	c := QueryFingerprint("solid state battery 2026 market size")

	assert.Equal(t, a, b, "identical queries share a fingerprint")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64, "hex-encoded sha256")
}

func TestEvidenceRecordExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := NewEvidenceRecord("query", "result", now)

	ttl := 24 * time.Hour
	assert.False(t, rec.Expired(ttl, now))
	assert.False(t, rec.Expired(ttl, now.Add(23*time.Hour)))
	assert.True(t, rec.Expired(ttl, now.Add(24*time.Hour)))
	assert.True(t, rec.Expired(ttl, now.Add(48*time.Hour)))
}

func TestChunkBreadcrumb(t *testing.T) {
	c := Chunk{
		Source:  "battery_report.md",
		Headers: []string{"Market", "Regional", "APAC"},
	}
	assert.Equal(t, "battery_report.md > Market > Regional > APAC", c.Breadcrumb())

	c.Headers = nil
	assert.Equal(t, "battery_report.md", c.Breadcrumb())
}
