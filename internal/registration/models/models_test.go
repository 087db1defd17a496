package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "testadmin/pkg/domain-errors"
)

type ModelsSuite struct {
	suite.Suite
}

func TestModelsSuite(t *testing.T) {
	suite.Run(t, new(ModelsSuite))
}

func validRegister() *RegisterRequest {
	return &RegisterRequest{
		FirstName: "Thandi",
		LastName:  "Nkosi",
		Email:     "thandi@example.com",
		IDType:    "SA_ID",
		IDNumber:  "8001015009087",
	}
}

func (s *ModelsSuite) TestStatusTransitions() {
	s.True(StatusPending.CanTransitionTo(StatusApproved))
	s.True(StatusPending.CanTransitionTo(StatusRejected))
	s.False(StatusPending.CanTransitionTo(StatusPending))
	s.False(StatusApproved.CanTransitionTo(StatusRejected))
	s.False(StatusRejected.CanTransitionTo(StatusApproved))
	s.False(Status("archived").IsValid())
}

func (s *ModelsSuite) TestRegisterNormalize() {
	req := &RegisterRequest{
		FirstName:   "  Thandi  ",
		LastName:    "van  der\tMerwe",
		Email:       " Thandi@Example.COM ",
		IDType:      " passport",
		IDNumber:    " a1234567 ",
		DateOfBirth: " 1990-05-04 ",
	}
	req.Normalize()

	s.Equal("Thandi", req.FirstName)
	s.Equal("van der Merwe", req.LastName)
	s.Equal("thandi@example.com", req.Email)
	s.Equal("PASSPORT", req.IDType)
	s.Equal("A1234567", req.IDNumber)
	s.Equal("1990-05-04", req.DateOfBirth)
}

func (s *ModelsSuite) TestRegisterNormalize_SAIDKeepsCase() {
	req := validRegister()
	req.IDNumber = " 800101500908x "
	req.Normalize()
	s.Equal("800101500908x", req.IDNumber)
}

func (s *ModelsSuite) TestRegisterValidate() {
	s.NoError(validRegister().Validate())

	req := validRegister()
	req.Email = "not-an-email"
	err := req.Validate()
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	req = validRegister()
	req.IDType = "DRIVERS"
	s.Error(req.Validate())

	req = validRegister()
	req.DateOfBirth = "1980/01/01"
	s.Error(req.Validate())

	req = validRegister()
	req.FirstName = strings.Repeat("a", 101)
	s.Error(req.Validate())

	var nilReq *RegisterRequest
	s.True(dErrors.HasCode(nilReq.Validate(), dErrors.CodeBadRequest))
}

func (s *ModelsSuite) TestSuppliedDateOfBirth() {
	req := validRegister()
	_, ok, err := req.SuppliedDateOfBirth()
	s.NoError(err)
	s.False(ok)

	req.DateOfBirth = "1980-01-01"
	dob, ok, err := req.SuppliedDateOfBirth()
	s.NoError(err)
	s.True(ok)
	s.Equal(1980, dob.Year())
}

func (s *ModelsSuite) TestFingerprint() {
	a, b := validRegister(), validRegister()
	s.Equal(a.Fingerprint(), b.Fingerprint())

	b.IdempotencyKey = "key-1"
	s.Equal(a.Fingerprint(), b.Fingerprint(), "the key itself is not part of the content")

	b.Email = "other@example.com"
	s.NotEqual(a.Fingerprint(), b.Fingerprint())

	// Field boundaries are significant.
	c, d := validRegister(), validRegister()
	c.FirstName, c.LastName = "Ab", "c"
	d.FirstName, d.LastName = "A", "bc"
	s.NotEqual(c.Fingerprint(), d.Fingerprint())
}

func (s *ModelsSuite) TestUpdateStatusValidate() {
	req := &UpdateStatusRequest{Status: " Approved "}
	req.Normalize()
	s.NoError(req.Validate())

	req = &UpdateStatusRequest{Status: "pending"}
	s.Error(req.Validate(), "pending is not a decision")

	req = &UpdateStatusRequest{Status: "rejected"}
	err := req.Validate()
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	req = &UpdateStatusRequest{Status: "rejected", Reason: "document mismatch"}
	s.NoError(req.Validate())
}
