package handler

import (
	"time"

	"testadmin/internal/identity/idnumber"
	"testadmin/internal/registration/models"
	"testadmin/pkg/validation"
)

// ApplicantResponse is the public view of an applicant. The ID number is
// always masked.
type ApplicantResponse struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	IDType       string    `json:"id_type"`
	IDNumber     string    `json:"id_number"`
	DateOfBirth  *string   `json:"date_of_birth,omitempty"`
	Gender       *string   `json:"gender,omitempty"`
	Citizenship  *string   `json:"citizenship,omitempty"`
	Status       string    `json:"status"`
	StatusReason string    `json:"status_reason,omitempty"`
	DecidedBy    string    `json:"decided_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListResponse is one page of applicants.
type ListResponse struct {
	Applicants []ApplicantResponse `json:"applicants"`
	Total      int                 `json:"total"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

func toApplicantResponse(a *models.Applicant) ApplicantResponse {
	resp := ApplicantResponse{
		ID:           a.ID.String(),
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Email:        a.Email,
		IDType:       string(a.IDType),
		IDNumber:     idnumber.Mask(a.IDNumber),
		Status:       string(a.Status),
		StatusReason: a.StatusReason,
		DecidedBy:    a.DecidedBy,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.DateOfBirth != nil {
		dob := a.DateOfBirth.Format(validation.DateLayout)
		resp.DateOfBirth = &dob
	}
	if a.Gender != nil {
		g := a.Gender.String()
		resp.Gender = &g
	}
	if a.Citizenship != nil {
		c := string(*a.Citizenship)
		resp.Citizenship = &c
	}
	return resp
}

func toListResponse(page *models.Page) ListResponse {
	items := make([]ApplicantResponse, 0, len(page.Applicants))
	for _, a := range page.Applicants {
		items = append(items, toApplicantResponse(a))
	}
	return ListResponse{
		Applicants: items,
		Total:      page.Total,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
}
