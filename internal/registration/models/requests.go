package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"testadmin/internal/identity/idnumber"
	dErrors "testadmin/pkg/domain-errors"
	s "testadmin/pkg/string"
	"testadmin/pkg/validation"
)

// RegisterRequest is the body of POST /applicants.
type RegisterRequest struct {
	FirstName   string `json:"first_name" validate:"required,notblank,max=100"`
	LastName    string `json:"last_name" validate:"required,notblank,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	IDType      string `json:"id_type" validate:"required,oneof=SA_ID FOREIGN_ID PASSPORT"`
	IDNumber    string `json:"id_number" validate:"required,notblank,max=64"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// IdempotencyKey comes from the Idempotency-Key header.
	IdempotencyKey string `json:"-" validate:"omitempty,max=255"`
}

// Normalize canonicalises the request so equivalent submissions compare equal.
// Foreign ID and passport numbers are upper-cased; SA ID numbers are only
// trimmed so that any stray character still fails validation.
func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.FirstName = s.CollapseSpaces(r.FirstName)
	r.LastName = s.CollapseSpaces(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.IDType = strings.ToUpper(strings.TrimSpace(r.IDType))
	s.TrimStrings(&r.IDNumber, &r.DateOfBirth, &r.IdempotencyKey)
	if idnumber.IDType(r.IDType) != idnumber.IDTypeSAID {
		r.IDNumber = strings.ToUpper(r.IDNumber)
	}
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// IDTypeValue returns the ID type as an idnumber.IDType.
func (r *RegisterRequest) IDTypeValue() idnumber.IDType {
	return idnumber.IDType(r.IDType)
}

// SuppliedDateOfBirth parses the optional date of birth. It reports false
// when none was supplied.
func (r *RegisterRequest) SuppliedDateOfBirth() (time.Time, bool, error) {
	if r.DateOfBirth == "" {
		return time.Time{}, false, nil
	}
	dob, err := time.Parse(validation.DateLayout, r.DateOfBirth)
	if err != nil {
		return time.Time{}, false, dErrors.NewField(dErrors.CodeValidation, "date_of_birth", "date_of_birth must be a date in YYYY-MM-DD format")
	}
	return dob, true, nil
}

// Fingerprint identifies the request content for idempotency checks.
// Call after Normalize.
func (r *RegisterRequest) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{r.FirstName, r.LastName, r.Email, r.IDType, r.IDNumber, r.DateOfBirth} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// UpdateStatusRequest is the body of PATCH /admin/applicants/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

func (r *UpdateStatusRequest) Normalize() {
	if r == nil {
		return
	}
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *UpdateStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	if Status(r.Status) == StatusRejected && r.Reason == "" {
		return dErrors.NewField(dErrors.CodeValidation, "reason", "reason is required when rejecting an applicant")
	}
	return nil
}
