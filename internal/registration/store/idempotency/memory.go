package idempotency

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	record    Record
	expiresAt time.Time
}

// InMemory keeps idempotency records in process memory.
type InMemory struct {
	mu      sync.Mutex
	records map[string]entry
	now     func() time.Time
}

// Option configures an InMemory store.
type Option func(*InMemory)

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *InMemory) {
		s.now = now
	}
}

// NewInMemory creates an in-memory idempotency store.
func NewInMemory(opts ...Option) *InMemory {
	s := &InMemory{
		records: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reserve claims key for a request with the given fingerprint. When the key
// is already held it returns the existing record and false.
func (s *InMemory) Reserve(_ context.Context, key, fingerprint string, ttl time.Duration) (*Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.records[key]; ok && now.Before(e.expiresAt) {
		existing := e.record
		return &existing, false, nil
	}
	s.records[key] = entry{
		record:    Record{Fingerprint: fingerprint},
		expiresAt: now.Add(ttl),
	}
	return nil, true, nil
}

// Complete stores the final record for key, replacing the caller's
// reservation. A live record for another fingerprint, or one that is already
// complete, is kept.
func (s *InMemory) Complete(_ context.Context, key string, record Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.records[key]; ok && now.Before(e.expiresAt) && !s.owns(e, record.Fingerprint) {
		return nil
	}
	s.records[key] = entry{record: record, expiresAt: now.Add(ttl)}
	return nil
}

// Release drops key while it is a live pending reservation for fingerprint.
func (s *InMemory) Release(_ context.Context, key, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.records[key]; ok && s.now().Before(e.expiresAt) && s.owns(e, fingerprint) {
		delete(s.records, key)
	}
	return nil
}

func (s *InMemory) owns(e entry, fingerprint string) bool {
	return e.record.Pending() && e.record.Fingerprint == fingerprint
}

// Get returns the live record for key.
func (s *InMemory) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.records[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	rec := e.record
	return &rec, nil
}
