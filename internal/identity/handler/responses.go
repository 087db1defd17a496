package handler

import (
	"testadmin/internal/identity/idnumber"
	"testadmin/internal/identity/service"
)

// ValidateResponse is returned for every validation, passing or not.
type ValidateResponse struct {
	Valid       bool    `json:"valid"`
	IDType      string  `json:"id_type"`
	ErrorKind   string  `json:"error_kind,omitempty"`
	Error       string  `json:"error,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Citizenship *string `json:"citizenship,omitempty"`
}

// TypesResponse lists the supported ID types.
type TypesResponse struct {
	IDTypes []string `json:"id_types"`
}

func toValidateResponse(res service.Result) ValidateResponse {
	resp := ValidateResponse{
		Valid:  res.Valid,
		IDType: string(res.IDType),
	}
	if !res.Valid {
		resp.ErrorKind = string(res.Kind)
		resp.Error = res.Message
		return resp
	}
	if res.DateOfBirth != nil {
		dob := res.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &dob
	}
	if res.Gender != nil {
		g := string(*res.Gender)
		resp.Gender = &g
	}
	if res.Citizenship != nil {
		c := string(*res.Citizenship)
		resp.Citizenship = &c
	}
	return resp
}

func supportedTypes() TypesResponse {
	types := idnumber.SupportedIDTypes()
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return TypesResponse{IDTypes: out}
}
