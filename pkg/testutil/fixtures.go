package testutil

import (
	"time"

	"testadmin/internal/identity/idnumber"
	"testadmin/internal/registration/models"
	"testadmin/pkg/domain"
)

// ApplicantBuilder provides a fluent interface for building test applicants.
// The default is a pending South African citizen born 1980-01-01.
type ApplicantBuilder struct {
	applicant *models.Applicant
}

func NewApplicantBuilder() *ApplicantBuilder {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &ApplicantBuilder{applicant: &models.Applicant{
		ID:        domain.NewApplicantID(),
		FirstName: "Thandi",
		LastName:  "Nkosi",
		Email:     "thandi@example.com",
		IDType:    idnumber.IDTypeSAID,
		IDNumber:  "8001015009087",
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}}
}

func (b *ApplicantBuilder) WithID(id domain.ApplicantID) *ApplicantBuilder {
	b.applicant.ID = id
	return b
}

// WithIDNumber sets the document. Build fills the derived attributes for
// SA_ID and leaves them nil for other types.
func (b *ApplicantBuilder) WithIDNumber(idType idnumber.IDType, number string) *ApplicantBuilder {
	b.applicant.IDType = idType
	b.applicant.IDNumber = number
	return b
}

func (b *ApplicantBuilder) WithName(firstName, lastName string) *ApplicantBuilder {
	b.applicant.FirstName = firstName
	b.applicant.LastName = lastName
	return b
}

func (b *ApplicantBuilder) WithEmail(email string) *ApplicantBuilder {
	b.applicant.Email = email
	return b
}

func (b *ApplicantBuilder) WithStatus(status models.Status) *ApplicantBuilder {
	b.applicant.Status = status
	return b
}

// CreatedAt sets both timestamps.
func (b *ApplicantBuilder) CreatedAt(t time.Time) *ApplicantBuilder {
	b.applicant.CreatedAt = t
	b.applicant.UpdatedAt = t
	return b
}

func (b *ApplicantBuilder) Build() *models.Applicant {
	a := *b.applicant
	if a.IDType == idnumber.IDTypeSAID {
		dob := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
		gender := idnumber.GenderMale
		citizenship := idnumber.CitizenshipCitizen
		a.DateOfBirth = &dob
		a.Gender = &gender
		a.Citizenship = &citizenship
	}
	return &a
}
