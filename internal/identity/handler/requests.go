package handler

import (
	"strings"

	"testadmin/internal/identity/idnumber"
	"testadmin/pkg/platform/validation"
)

// ValidateRequest is the body of POST /identity/validate.
type ValidateRequest struct {
	IDType   string `json:"id_type"`
	IDNumber string `json:"id_number"`
}

// Normalize canonicalises the ID type. The ID number is passed to the
// validator untouched: for SA IDs surrounding whitespace is a format error.
func (r *ValidateRequest) Normalize() {
	r.IDType = strings.ToUpper(strings.TrimSpace(r.IDType))
}

// Validate only bounds input size; content rules belong to the validator.
func (r *ValidateRequest) Validate() error {
	if err := validation.CheckStringLength("id_type", r.IDType, 32); err != nil {
		return err
	}
	return validation.CheckStringLength("id_number", r.IDNumber, validation.MaxIDNumberLength)
}

func (r *ValidateRequest) idType() idnumber.IDType {
	return idnumber.IDType(r.IDType)
}
