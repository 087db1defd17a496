package models

import (
	"time"

	"testadmin/internal/identity/idnumber"
	"testadmin/pkg/domain"
)

// Status is the review state of an applicant.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a review may move from s to next.
// Only pending applicants can be decided, and decisions are final.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

// Applicant is a person registered to sit a test.
type Applicant struct {
	ID           domain.ApplicantID
	FirstName    string
	LastName     string
	Email        string
	IDType       idnumber.IDType
	IDNumber     string
	DateOfBirth  *time.Time
	Gender       *idnumber.Gender
	Citizenship  *idnumber.Citizenship
	Status       Status
	StatusReason string
	DecidedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListFilter narrows List results. Zero values mean "any".
type ListFilter struct {
	Status Status
	IDType idnumber.IDType
	Limit  int
	Offset int
}

// Page is one page of applicants plus the unpaged total.
type Page struct {
	Applicants []*Applicant
	Total      int
	Limit      int
	Offset     int
}

// StatusChange is a compare-and-set update of an applicant's status.
type StatusChange struct {
	ID     domain.ApplicantID
	From   Status
	To     Status
	Reason string
	Actor  string
	At     time.Time
}

// RegistrationResult is the outcome of Register. Replayed is set when the
// applicant was returned from an earlier request with the same idempotency key.
type RegistrationResult struct {
	Applicant *Applicant
	Replayed  bool
}
