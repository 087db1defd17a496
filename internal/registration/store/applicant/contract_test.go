package applicant

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"testadmin/internal/identity/idnumber"
	"testadmin/internal/registration/models"
	"testadmin/internal/sentinel"
	"testadmin/pkg/domain"
	"testadmin/pkg/testutil"
)

// store is the behaviour both implementations must share.
type store interface {
	Create(ctx context.Context, a *models.Applicant) error
	FindByID(ctx context.Context, id domain.ApplicantID) (*models.Applicant, error)
	FindByIDNumber(ctx context.Context, idType idnumber.IDType, number string) (*models.Applicant, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Applicant, int, error)
	UpdateStatus(ctx context.Context, change models.StatusChange) (*models.Applicant, error)
}

var (
	_ store = (*InMemory)(nil)
	_ store = (*PostgresStore)(nil)
)

// storeContractSuite holds the assertions run against every store.
//
// Justification: The service relies on the store for the uniqueness of
// ID numbers and for compare-and-set status changes. Both invariants must
// hold identically in memory and in Postgres.
type storeContractSuite struct {
	suite.Suite
	newStore func() store
	store    store
	base     time.Time
}

func (s *storeContractSuite) SetupTest() {
	s.store = s.newStore()
	s.base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *storeContractSuite) applicant(idType idnumber.IDType, number string, offset time.Duration) *models.Applicant {
	return testutil.NewApplicantBuilder().
		WithIDNumber(idType, number).
		CreatedAt(s.base.Add(offset)).
		Build()
}

func (s *storeContractSuite) TestCreateAndFind() {
	ctx := context.Background()
	a := s.applicant(idnumber.IDTypeSAID, "8001015009087", 0)
	s.Require().NoError(s.store.Create(ctx, a))

	got, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(a.ID, got.ID)
	s.Equal("8001015009087", got.IDNumber)
	s.Require().NotNil(got.DateOfBirth)
	s.True(a.DateOfBirth.Equal(*got.DateOfBirth))
	s.Equal(idnumber.GenderMale, *got.Gender)
	s.Equal(models.StatusPending, got.Status)

	byNumber, err := s.store.FindByIDNumber(ctx, idnumber.IDTypeSAID, "8001015009087")
	s.Require().NoError(err)
	s.Equal(a.ID, byNumber.ID)
}

func (s *storeContractSuite) TestOptionalAttributesRoundTripAsNil() {
	ctx := context.Background()
	a := s.applicant(idnumber.IDTypePassport, "A1234567", 0)
	s.Require().NoError(s.store.Create(ctx, a))

	got, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Nil(got.DateOfBirth)
	s.Nil(got.Gender)
	s.Nil(got.Citizenship)
}

func (s *storeContractSuite) TestNotFound() {
	ctx := context.Background()
	_, err := s.store.FindByID(ctx, domain.NewApplicantID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByIDNumber(ctx, idnumber.IDTypeSAID, "8001015009087")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestDuplicateIDNumberRejected() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.applicant(idnumber.IDTypeSAID, "8001015009087", 0)))

	err := s.store.Create(ctx, s.applicant(idnumber.IDTypeSAID, "8001015009087", time.Minute))
	s.ErrorIs(err, sentinel.ErrAlreadyExists)

	// Same number under another document type is a different identity.
	s.NoError(s.store.Create(ctx, s.applicant(idnumber.IDTypePassport, "8001015009087", time.Minute)))
}

func (s *storeContractSuite) TestConcurrentCreateOnlyOneWins() {
	ctx := context.Background()
	res := testutil.RunConcurrent(10, func(int) error {
		return s.store.Create(ctx, s.applicant(idnumber.IDTypeForeignID, "X-99887766", 0))
	})
	s.Equal(int32(1), res.Successes)
	s.Equal(int32(9), res.Conflicts)
	s.Zero(res.Errors)
}

func (s *storeContractSuite) TestListFiltersAndPages() {
	ctx := context.Background()
	first := s.applicant(idnumber.IDTypeSAID, "8001015009087", 0)
	second := s.applicant(idnumber.IDTypePassport, "A1234567", time.Minute)
	third := s.applicant(idnumber.IDTypePassport, "B7654321", 2*time.Minute)
	for _, a := range []*models.Applicant{first, second, third} {
		s.Require().NoError(s.store.Create(ctx, a))
	}
	_, err := s.store.UpdateStatus(ctx, models.StatusChange{
		ID: second.ID, From: models.StatusPending, To: models.StatusApproved, Actor: "ops", At: s.base.Add(time.Hour),
	})
	s.Require().NoError(err)

	all, total, err := s.store.List(ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(all, 3)
	s.Equal(third.ID, all[0].ID, "newest first")
	s.Equal(first.ID, all[2].ID)

	pending, total, err := s.store.List(ctx, models.ListFilter{Status: models.StatusPending})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Len(pending, 2)

	passports, total, err := s.store.List(ctx, models.ListFilter{IDType: idnumber.IDTypePassport, Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Require().Len(passports, 1)
	s.Equal(second.ID, passports[0].ID)

	beyond, total, err := s.store.List(ctx, models.ListFilter{Offset: 10})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Empty(beyond)
}

func (s *storeContractSuite) TestUpdateStatusIsCompareAndSet() {
	ctx := context.Background()
	a := s.applicant(idnumber.IDTypeSAID, "8001015009087", 0)
	s.Require().NoError(s.store.Create(ctx, a))

	decidedAt := s.base.Add(time.Hour)
	updated, err := s.store.UpdateStatus(ctx, models.StatusChange{
		ID: a.ID, From: models.StatusPending, To: models.StatusRejected,
		Reason: "document mismatch", Actor: "ops@example.com", At: decidedAt,
	})
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, updated.Status)
	s.Equal("document mismatch", updated.StatusReason)
	s.Equal("ops@example.com", updated.DecidedBy)
	s.True(decidedAt.Equal(updated.UpdatedAt))

	_, err = s.store.UpdateStatus(ctx, models.StatusChange{
		ID: a.ID, From: models.StatusPending, To: models.StatusApproved, At: decidedAt,
	})
	s.ErrorIs(err, sentinel.ErrInvalidState)

	_, err = s.store.UpdateStatus(ctx, models.StatusChange{
		ID: domain.NewApplicantID(), From: models.StatusPending, To: models.StatusApproved, At: decidedAt,
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestReturnedApplicantsAreCopies() {
	ctx := context.Background()
	a := s.applicant(idnumber.IDTypeSAID, "8001015009087", 0)
	s.Require().NoError(s.store.Create(ctx, a))

	a.FirstName = "Mutated"
	got, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("Thandi", got.FirstName)
}
