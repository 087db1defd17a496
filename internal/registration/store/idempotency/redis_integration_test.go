//go:build integration

package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"testadmin/pkg/testutil/containers"
)

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	suite.Run(t, &storeContractSuite{
		newStore: func() store {
			if err := rc.FlushAll(context.Background()); err != nil {
				t.Fatalf("flush redis: %v", err)
			}
			return NewRedis(rc.Client)
		},
	})
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	rc := containers.GetManager().GetRedis(t)
	s := NewRedis(rc.Client)

	if err := s.Complete(ctx, "ttl-key", Record{Fingerprint: "fp", ApplicantID: "a"}, 30*time.Second); err != nil {
		t.Fatalf("complete: %v", err)
	}
	ttl, err := rc.Client.TTL(ctx, redisKey("ttl-key")).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > 30*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}
