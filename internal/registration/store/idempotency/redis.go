package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "registration:idempotency:"

// reserveAttempts bounds the SETNX/GET loop when a key expires between calls.
const reserveAttempts = 3

// completeScript writes the final record unless the key now holds a record
// for another fingerprint or an already completed one.
// KEYS[1] key; ARGV[1] fingerprint, ARGV[2] payload, ARGV[3] ttl in ms.
var completeScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
  local ok, rec = pcall(cjson.decode, current)
  if not ok or rec.fingerprint ~= ARGV[1] then
    return 0
  end
  if type(rec.applicant_id) == 'string' and rec.applicant_id ~= '' then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// releaseScript deletes the key only while it is a pending reservation for
// the given fingerprint.
// KEYS[1] key; ARGV[1] fingerprint.
var releaseScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  return 0
end
local ok, rec = pcall(cjson.decode, current)
if not ok or rec.fingerprint ~= ARGV[1] then
  return 0
end
if type(rec.applicant_id) == 'string' and rec.applicant_id ~= '' then
  return 0
end
return redis.call('DEL', KEYS[1])
`)

// RedisStore persists idempotency records in Redis with TTL-based eviction.
// Reservation uses SET NX so that concurrent replicas agree on one owner.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed idempotency store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

// Reserve claims key for a request with the given fingerprint.
//
// Side effects: performs SET NX, then GET when the key is taken.
func (s *RedisStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*Record, bool, error) {
	payload, err := json.Marshal(Record{Fingerprint: fingerprint})
	if err != nil {
		return nil, false, fmt.Errorf("encode idempotency record: %w", err)
	}
	for range reserveAttempts {
		ok, err := s.client.SetNX(ctx, redisKey(key), payload, ttl).Result()
		if err != nil {
			return nil, false, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if ok {
			return nil, true, nil
		}
		existing, err := s.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return nil, false, fmt.Errorf("reserve idempotency key: contention on %q", key)
}

// Complete replaces the caller's reservation with the final record. A key
// that was re-reserved for another fingerprint or already completed is left
// untouched.
//
// Side effects: runs completeScript (GET then SET) atomically.
func (s *RedisStore) Complete(ctx context.Context, key string, record Record, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}
	err = completeScript.Run(ctx, s.client, []string{redisKey(key)},
		record.Fingerprint, string(payload), ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release deletes key while it is still a pending reservation for
// fingerprint, so the request can be retried.
//
// Side effects: runs releaseScript (GET then DEL) atomically.
func (s *RedisStore) Release(ctx context.Context, key, fingerprint string) error {
	err := releaseScript.Run(ctx, s.client, []string{redisKey(key)}, fingerprint).Err()
	if err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// Get loads the record for key.
//
// Errors: returns ErrNotFound on a miss; wraps Redis or JSON decode errors.
func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find idempotency key: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &rec, nil
}
