package models

import "time"

// Event types published for applicants.
const (
	EventApplicantRegistered    = "applicant.registered"
	EventApplicantStatusChanged = "applicant.status_changed"
)

// Event is the payload published to the applicant topic. ID numbers only
// appear hashed.
type Event struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	ApplicantID string    `json:"applicant_id"`
	IDType      string    `json:"id_type"`
	IDHash      string    `json:"id_hash"`
	Status      string    `json:"status"`
	Actor       string    `json:"actor,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}
