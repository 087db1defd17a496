package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"
)

type store interface {
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*Record, bool, error)
	Complete(ctx context.Context, key string, record Record, ttl time.Duration) error
	Release(ctx context.Context, key, fingerprint string) error
	Get(ctx context.Context, key string) (*Record, error)
}

var (
	_ store = (*InMemory)(nil)
	_ store = (*RedisStore)(nil)
)

// storeContractSuite covers reservation semantics shared by all stores.
//
// Justification: Replays of POST /applicants depend on exactly one request
// owning a key, and on completed records surviving until they expire.
type storeContractSuite struct {
	suite.Suite
	newStore func() store
	store    store
}

func (s *storeContractSuite) SetupTest() {
	s.store = s.newStore()
}

func (s *storeContractSuite) TestReserveThenReplay() {
	ctx := context.Background()

	existing, reserved, err := s.store.Reserve(ctx, "key-1", "fp-a", time.Minute)
	s.Require().NoError(err)
	s.True(reserved)
	s.Nil(existing)

	existing, reserved, err = s.store.Reserve(ctx, "key-1", "fp-a", time.Minute)
	s.Require().NoError(err)
	s.False(reserved)
	s.Require().NotNil(existing)
	s.True(existing.Pending())
	s.Equal("fp-a", existing.Fingerprint)

	s.Require().NoError(s.store.Complete(ctx, "key-1", Record{Fingerprint: "fp-a", ApplicantID: "app-1"}, time.Hour))

	existing, reserved, err = s.store.Reserve(ctx, "key-1", "fp-b", time.Minute)
	s.Require().NoError(err)
	s.False(reserved)
	s.Require().NotNil(existing)
	s.False(existing.Pending())
	s.Equal("app-1", existing.ApplicantID)
	s.Equal("fp-a", existing.Fingerprint)
}

func (s *storeContractSuite) TestReleaseAllowsRetry() {
	ctx := context.Background()
	_, reserved, err := s.store.Reserve(ctx, "key-2", "fp", time.Minute)
	s.Require().NoError(err)
	s.Require().True(reserved)

	s.Require().NoError(s.store.Release(ctx, "key-2", "fp"))
	_, err = s.store.Get(ctx, "key-2")
	s.ErrorIs(err, ErrNotFound)

	_, reserved, err = s.store.Reserve(ctx, "key-2", "fp", time.Minute)
	s.Require().NoError(err)
	s.True(reserved)
}

func (s *storeContractSuite) TestConcurrentReserveHasOneOwner() {
	ctx := context.Background()
	var owners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, reserved, err := s.store.Reserve(ctx, "key-3", "fp", time.Minute)
			if err == nil && reserved {
				owners.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), owners.Load())
}

func (s *storeContractSuite) TestStaleOwnerCannotTouchNewReservation() {
	ctx := context.Background()
	_, reserved, err := s.store.Reserve(ctx, "key-4", "fp-new", time.Minute)
	s.Require().NoError(err)
	s.Require().True(reserved)

	s.Require().NoError(s.store.Release(ctx, "key-4", "fp-old"))
	s.Require().NoError(s.store.Complete(ctx, "key-4", Record{Fingerprint: "fp-old", ApplicantID: "app-old"}, time.Hour))

	rec, err := s.store.Get(ctx, "key-4")
	s.Require().NoError(err)
	s.Equal("fp-new", rec.Fingerprint)
	s.True(rec.Pending())
}

func (s *storeContractSuite) TestReleaseKeepsCompletedRecord() {
	ctx := context.Background()
	_, reserved, err := s.store.Reserve(ctx, "key-5", "fp", time.Minute)
	s.Require().NoError(err)
	s.Require().True(reserved)
	s.Require().NoError(s.store.Complete(ctx, "key-5", Record{Fingerprint: "fp", ApplicantID: "app-1"}, time.Hour))

	s.Require().NoError(s.store.Release(ctx, "key-5", "fp"))
	s.Require().NoError(s.store.Complete(ctx, "key-5", Record{Fingerprint: "fp", ApplicantID: "app-2"}, time.Hour))

	rec, err := s.store.Get(ctx, "key-5")
	s.Require().NoError(err)
	s.Equal("app-1", rec.ApplicantID)
}

func (s *storeContractSuite) TestCompleteAfterReservationLapsed() {
	ctx := context.Background()
	s.Require().NoError(s.store.Complete(ctx, "key-6", Record{Fingerprint: "fp", ApplicantID: "app-1"}, time.Hour))

	rec, err := s.store.Get(ctx, "key-6")
	s.Require().NoError(err)
	s.Equal("app-1", rec.ApplicantID)
}
