package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

func TestEvidenceStore_SaveAndLoad(t *testing.T) {
	store, err := NewEvidenceStore(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fingerprint := domain.QueryFingerprint("latest battery market data")
	record := domain.NewEvidenceRecord("latest battery market data", "evidence text", now)

	require.NoError(t, store.Save(fingerprint, record))

	loaded, err := store.Load(fingerprint)
	require.NoError(t, err)
	assert.Equal(t, record.Query, loaded.Query)
	assert.Equal(t, record.Result, loaded.Result)
	assert.InDelta(t, record.Timestamp, loaded.Timestamp, 1e-6)
}

func TestEvidenceStore_LoadMissing(t *testing.T) {
	store, err := NewEvidenceStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(domain.QueryFingerprint("never cached"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvidenceStore_SaveReplaces(t *testing.T) {
	store, err := NewEvidenceStore(t.TempDir())
	require.NoError(t, err)

	fingerprint := domain.QueryFingerprint("query")
	now := time.Now()
	require.NoError(t, store.Save(fingerprint, domain.NewEvidenceRecord("query", "old", now)))
	require.NoError(t, store.Save(fingerprint, domain.NewEvidenceRecord("query", "new", now)))

	loaded, err := store.Load(fingerprint)
	require.NoError(t, err)
	assert.Equal(t, "new", loaded.Result)
}

func TestEvidenceStore_CorruptRecordIsAMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewEvidenceStore(dir)
	require.NoError(t, err)

	fingerprint := domain.QueryFingerprint("query")
	require.NoError(t, os.WriteFile(filepath.Join(dir, fingerprint+".json"), []byte("{broken"), 0o644))

	_, err = store.Load(fingerprint)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEvidenceStore_WireFormat(t *testing.T) {
	dir := t.TempDir()
	store, err := NewEvidenceStore(dir)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	fingerprint := domain.QueryFingerprint("query")
	require.NoError(t, store.Save(fingerprint, domain.NewEvidenceRecord("query", "result", now)))

	// The on-disk format uses a float epoch timestamp.
	data, err := os.ReadFile(filepath.Join(dir, fingerprint+".json"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "query", raw["query"])
	assert.Equal(t, "result", raw["result"])
	ts, ok := raw["timestamp"].(float64)
	require.True(t, ok)
	assert.InDelta(t, float64(now.UnixNano())/1e9, ts, 1e-3)
}

func TestEvidenceStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewEvidenceStore(dir)
	require.NoError(t, err)

	fingerprint := domain.QueryFingerprint("query")
	require.NoError(t, store.Save(fingerprint, domain.NewEvidenceRecord("query", "result", time.Now())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fingerprint+".json", entries[0].Name())
}
