// Package domain holds small value types shared across feature packages.
package domain

import (
	"github.com/google/uuid"

	dErrors "testadmin/pkg/domain-errors"
)

// ApplicantID identifies a registered test applicant.
type ApplicantID uuid.UUID

// NewApplicantID returns a random ApplicantID.
func NewApplicantID() ApplicantID { return ApplicantID(uuid.New()) }

// ParseApplicantID parses s at a trust boundary. Nil UUIDs parse successfully
// so stores can answer with a proper not-found.
func ParseApplicantID(s string) (ApplicantID, error) {
	if s == "" {
		return ApplicantID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "applicant ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return ApplicantID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "invalid applicant ID format")
	}
	return ApplicantID(id), nil
}

func (id ApplicantID) String() string { return uuid.UUID(id).String() }

func (id ApplicantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
