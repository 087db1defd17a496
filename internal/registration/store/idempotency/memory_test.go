package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &storeContractSuite{
		newStore: func() store { return NewInMemory() },
	})
}

func TestInMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewInMemory(WithClock(func() time.Time { return now }))

	require.NoError(t, s.Complete(ctx, "k", Record{Fingerprint: "fp", ApplicantID: "a"}, time.Hour))
	rec, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "a", rec.ApplicantID)

	now = now.Add(time.Hour)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	_, reserved, err := s.Reserve(ctx, "k", "other", time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved, "expired record should not block a new reservation")
}

func TestInMemoryExpiredReservationIsNotReleasedByStaleOwner(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewInMemory(WithClock(func() time.Time { return now }))

	_, reserved, err := s.Reserve(ctx, "k", "fp-a", time.Minute)
	require.NoError(t, err)
	require.True(t, reserved)

	now = now.Add(2 * time.Minute)
	_, reserved, err = s.Reserve(ctx, "k", "fp-b", time.Minute)
	require.NoError(t, err)
	require.True(t, reserved)

	require.NoError(t, s.Release(ctx, "k", "fp-a"))
	require.NoError(t, s.Complete(ctx, "k", Record{Fingerprint: "fp-a", ApplicantID: "a"}, time.Hour))

	rec, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "fp-b", rec.Fingerprint)
	assert.True(t, rec.Pending())
}
