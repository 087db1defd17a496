//go:build integration

// Package containers starts the backing services used by integration tests.
// Each service is started once per test binary and shared by every suite in
// the package; Ryuk removes the containers when the process exits.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out the shared containers, starting each on first use.
type Manager struct {
	postgres shared[*PostgresContainer]
	redis    shared[*RedisContainer]
	kafka    shared[*KafkaContainer]
}

var manager = &Manager{}

// GetManager returns the process-wide manager.
func GetManager() *Manager {
	return manager
}

func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	return m.postgres.get(t, NewPostgresContainer)
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	return m.redis.get(t, NewRedisContainer)
}

func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	return m.kafka.get(t, NewKafkaContainer)
}

// shared starts a value once. A failed start is not cached, so the next
// test retries instead of inheriting a nil container.
type shared[T any] struct {
	mu      sync.Mutex
	started bool
	value   T
}

func (s *shared[T]) get(t *testing.T, start func(*testing.T) T) T {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.value = start(t)
		s.started = true
	}
	return s.value
}
