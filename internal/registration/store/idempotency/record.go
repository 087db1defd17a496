package idempotency

import (
	"testadmin/internal/sentinel"
)

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = sentinel.ErrNotFound

// Record is what an Idempotency-Key resolves to. A record without an
// ApplicantID is a reservation whose request is still in flight.
type Record struct {
	Fingerprint string `json:"fingerprint"`
	ApplicantID string `json:"applicant_id,omitempty"`
}

// Pending reports whether the original request has not completed yet.
func (r Record) Pending() bool {
	return r.ApplicantID == ""
}
