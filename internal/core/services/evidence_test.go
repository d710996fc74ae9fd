package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
)

// fakeBackend counts lookups and fails a configurable number of times.
type fakeBackend struct {
	result   string
	failures int
	failWith error
	calls    int
}

func (f *fakeBackend) Lookup(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.failWith
	}
	return f.result, nil
}

func (f *fakeBackend) Name() string { return "fake" }
func (f *fakeBackend) Close() error { return nil }

// memoryEvidenceStore is an in-memory EvidenceStore.
type memoryEvidenceStore struct {
	records map[string]domain.EvidenceRecord
	saveErr error
	saves   int
}

func newMemoryEvidenceStore() *memoryEvidenceStore {
	return &memoryEvidenceStore{records: make(map[string]domain.EvidenceRecord)}
}

func (m *memoryEvidenceStore) Load(fingerprint string) (*domain.EvidenceRecord, error) {
	record, ok := m.records[fingerprint]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (m *memoryEvidenceStore) Save(fingerprint string, record domain.EvidenceRecord) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[fingerprint] = record
	return nil
}

func evidenceSettings() domain.EvidenceSettings {
	s := domain.DefaultSettings().Evidence
	return s
}

func TestEvidenceService_Lookup(t *testing.T) {
	t.Run("nil backend returns empty", func(t *testing.T) {
		svc := NewEvidenceService(nil, newMemoryEvidenceStore(), evidenceSettings())
		result, err := svc.Lookup(context.Background(), "latest market data", false)
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("trigger gate blocks plain queries", func(t *testing.T) {
		backend := &fakeBackend{result: "evidence"}
		svc := NewEvidenceService(backend, newMemoryEvidenceStore(), evidenceSettings())

		result, err := svc.Lookup(context.Background(), "history of ceramics", false)
		require.NoError(t, err)
		assert.Empty(t, result)
		assert.Zero(t, backend.calls)
	})

	t.Run("force bypasses the gate", func(t *testing.T) {
		backend := &fakeBackend{result: "evidence"}
		svc := NewEvidenceService(backend, newMemoryEvidenceStore(), evidenceSettings())

		result, err := svc.Lookup(context.Background(), "history of ceramics", true)
		require.NoError(t, err)
		assert.Equal(t, "evidence", result)
	})

	t.Run("cjk trigger terms fire", func(t *testing.T) {
		backend := &fakeBackend{result: "evidence"}
		svc := NewEvidenceService(backend, newMemoryEvidenceStore(), evidenceSettings())

		result, err := svc.Lookup(context.Background(), "电池市场规模", false)
		require.NoError(t, err)
		assert.Equal(t, "evidence", result)
	})
}

func TestEvidenceService_CacheIdempotence(t *testing.T) {
	backend := &fakeBackend{result: "cached evidence"}
	store := newMemoryEvidenceStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewEvidenceService(backend, store, evidenceSettings(),
		WithClock(func() time.Time { return now }))

	first, err := svc.Lookup(context.Background(), "latest battery data", false)
	require.NoError(t, err)
	second, err := svc.Lookup(context.Background(), "latest battery data", false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.calls, "second lookup must be served from cache")
}

func TestEvidenceService_LazyExpiry(t *testing.T) {
	backend := &fakeBackend{result: "fresh evidence"}
	store := newMemoryEvidenceStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewEvidenceService(backend, store, evidenceSettings(),
		WithClock(func() time.Time { return now }))

	_, err := svc.Lookup(context.Background(), "latest battery data", false)
	require.NoError(t, err)

	// Advance past the TTL: the stale record is ignored and the backend
	// consulted again.
	now = now.Add(25 * time.Hour)
	_, err = svc.Lookup(context.Background(), "latest battery data", false)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
}

func TestEvidenceService_RetryPolicy(t *testing.T) {
	t.Run("transient failures retry with exponential backoff", func(t *testing.T) {
		backend := &fakeBackend{result: "recovered", failures: 2, failWith: domain.ErrBackendTransient}
		var slept []time.Duration
		svc := NewEvidenceService(backend, newMemoryEvidenceStore(), evidenceSettings(),
			WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

		result, err := svc.Lookup(context.Background(), "latest market data", false)
		require.NoError(t, err)
		assert.Equal(t, "recovered", result)
		assert.Equal(t, 3, backend.calls)
		assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, slept)
	})

	t.Run("exhausted retries degrade to empty", func(t *testing.T) {
		backend := &fakeBackend{failures: 10, failWith: domain.ErrBackendTransient}
		svc := NewEvidenceService(backend, newMemoryEvidenceStore(), evidenceSettings(),
			WithSleeper(func(time.Duration) {}))

		result, err := svc.Lookup(context.Background(), "latest market data", false)
		require.NoError(t, err)
		assert.Empty(t, result)
		assert.Equal(t, 3, backend.calls, "exactly MaxRetries attempts")
	})

	t.Run("auth failure never retries and warns once", func(t *testing.T) {
		backend := &fakeBackend{failures: 10, failWith: domain.ErrAuthRequired}
		state := NewAuthWarnState()
		svc := NewEvidenceService(backend, newMemoryEvidenceStore(), evidenceSettings(),
			WithAuthState(state))

		result, err := svc.Lookup(context.Background(), "latest market data", false)
		require.NoError(t, err)
		assert.Empty(t, result)
		assert.Equal(t, 1, backend.calls)
		assert.True(t, state.Warned())

		_, err = svc.Lookup(context.Background(), "latest policy data", false)
		require.NoError(t, err)
		assert.Equal(t, 2, backend.calls, "one attempt per query, no retries")
	})

	t.Run("cancelled context aborts between attempts", func(t *testing.T) {
		backend := &fakeBackend{failures: 10, failWith: domain.ErrBackendTransient}
		svc := NewEvidenceService(backend, newMemoryEvidenceStore(), evidenceSettings(),
			WithSleeper(func(time.Duration) {}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.Lookup(ctx, "latest market data", false)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, backend.calls)
	})
}

func TestEvidenceService_StoreWriteFailureDegrades(t *testing.T) {
	backend := &fakeBackend{result: "evidence"}
	store := newMemoryEvidenceStore()
	store.saveErr = errors.New("disk full")
	svc := NewEvidenceService(backend, store, evidenceSettings())

	// Write failure must not fail the lookup; the run continues uncached.
	result, err := svc.Lookup(context.Background(), "latest market data", false)
	require.NoError(t, err)
	assert.Equal(t, "evidence", result)

	_, err = svc.Lookup(context.Background(), "latest market data", false)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
}

func TestAuthWarnState(t *testing.T) {
	state := NewAuthWarnState()
	fired := 0
	state.WarnOnce(func() { fired++ })
	state.WarnOnce(func() { fired++ })
	assert.Equal(t, 1, fired)
	assert.True(t, state.Warned())
}
