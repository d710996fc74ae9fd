package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
	"github.com/draftmill/draftmill-cli/internal/logger"
)

// AuthWarnState suppresses repeated missing-credential warnings across
// the process lifetime. Owned by whoever constructs the evidence service
// and shared by reference.
type AuthWarnState struct {
	warned bool
}

// NewAuthWarnState returns a fresh, unwarned state.
func NewAuthWarnState() *AuthWarnState {
	return &AuthWarnState{}
}

// WarnOnce runs warn the first time it is called and never again.
func (s *AuthWarnState) WarnOnce(warn func()) {
	if s.warned {
		return
	}
	s.warned = true
	warn()
}

// Warned reports whether the warning has fired.
func (s *AuthWarnState) Warned() bool {
	return s.warned
}

// EvidenceService fronts the external lookup backend with a
// content-addressed, TTL-bounded cache. Lookups never raise for backend
// trouble: transient failures retry with exponential backoff and then
// degrade to an empty result, auth failures short-circuit with a single
// process-wide warning.
type EvidenceService struct {
	backend   driven.SearchBackend
	store     driven.EvidenceStore
	settings  domain.EvidenceSettings
	authState *AuthWarnState

	// Injectable for tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// EvidenceOption configures the evidence service.
type EvidenceOption func(*EvidenceService)

// WithSleeper replaces the backoff sleep function.
func WithSleeper(sleep func(time.Duration)) EvidenceOption {
	return func(s *EvidenceService) { s.sleep = sleep }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) EvidenceOption {
	return func(s *EvidenceService) { s.now = now }
}

// WithAuthState shares an externally owned warn-once state.
func WithAuthState(state *AuthWarnState) EvidenceOption {
	return func(s *EvidenceService) { s.authState = state }
}

// NewEvidenceService creates an evidence cache. The backend is optional;
// when nil every lookup returns empty.
func NewEvidenceService(backend driven.SearchBackend, store driven.EvidenceStore, settings domain.EvidenceSettings, opts ...EvidenceOption) *EvidenceService {
	s := &EvidenceService{
		backend:   backend,
		store:     store,
		settings:  settings,
		authState: NewAuthWarnState(),
		sleep:     time.Sleep,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns evidence text for a query, possibly empty. force
// bypasses the trigger-term gate, never the cache.
func (s *EvidenceService) Lookup(ctx context.Context, query string, force bool) (string, error) {
	if s.backend == nil {
		return "", nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}
	if !force && !s.triggered(query) {
		logger.Debug("Lookup gated, no trigger terms in %q", query)
		return "", nil
	}

	fingerprint := domain.QueryFingerprint(query)
	if cached, ok := s.loadFresh(fingerprint); ok {
		logger.Debug("Evidence cache hit for %q", query)
		return cached, nil
	}

	result, err := s.lookupWithRetry(ctx, query)
	if err != nil {
		return "", err
	}
	if result == "" {
		return "", nil
	}

	// Write-through. A store failure degrades to uncached, not to a
	// failed lookup.
	record := domain.NewEvidenceRecord(query, result, s.now())
	if err := s.store.Save(fingerprint, record); err != nil {
		logger.Warn("Evidence cache write failed: %v", err)
	}
	return result, nil
}

// loadFresh returns the cached result when a non-expired record exists.
// Expired records are ignored, not deleted (lazy expiry).
func (s *EvidenceService) loadFresh(fingerprint string) (string, bool) {
	record, err := s.store.Load(fingerprint)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Evidence cache read failed: %v", err)
		}
		return "", false
	}
	if record.Expired(s.settings.TTL, s.now()) {
		return "", false
	}
	return record.Result, true
}

// lookupWithRetry calls the backend up to MaxRetries times with 2^attempt
// second backoff between transient failures. Auth failures abort
// immediately with a single process-wide warning. The final transient
// failure returns an empty result, never an error.
func (s *EvidenceService) lookupWithRetry(ctx context.Context, query string) (string, error) {
	attempts := s.settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := s.backend.Lookup(ctx, query)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, domain.ErrAuthRequired) {
			s.authState.WarnOnce(func() {
				logger.Warn("Evidence backend rejected credentials; external lookups disabled: %v", err)
			})
			return "", nil
		}

		logger.Debug("Lookup attempt %d/%d failed: %v", attempt+1, attempts, err)
		if attempt < attempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
			s.sleep(backoff)
		}
	}

	logger.Warn("Evidence lookup for %q exhausted %d attempts", query, attempts)
	return "", nil
}

// triggered reports whether the query contains any trigger term.
// An empty trigger list disables gating.
func (s *EvidenceService) triggered(query string) bool {
	if len(s.settings.TriggerTerms) == 0 {
		return true
	}
	lower := strings.ToLower(query)
	for _, term := range s.settings.TriggerTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
