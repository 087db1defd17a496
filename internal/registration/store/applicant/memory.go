package applicant

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"testadmin/internal/identity/idnumber"
	"testadmin/internal/registration/models"
	"testadmin/internal/sentinel"
	"testadmin/pkg/domain"
)

// ErrNotFound is returned when an applicant is not found.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores applicants in memory for development and tests.
type InMemory struct {
	mu         sync.RWMutex
	applicants map[domain.ApplicantID]*models.Applicant
	idNumbers  map[string]domain.ApplicantID
}

// NewInMemory creates an in-memory applicant store.
func NewInMemory() *InMemory {
	return &InMemory{
		applicants: make(map[domain.ApplicantID]*models.Applicant),
		idNumbers:  make(map[string]domain.ApplicantID),
	}
}

func idNumberKey(idType idnumber.IDType, number string) string {
	return string(idType) + ":" + number
}

// Create inserts a new applicant. It fails with sentinel.ErrAlreadyExists
// when the ID number is already registered for the same ID type.
func (s *InMemory) Create(_ context.Context, a *models.Applicant) error {
	if a == nil {
		return fmt.Errorf("applicant is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := idNumberKey(a.IDType, a.IDNumber)
	if _, exists := s.idNumbers[key]; exists {
		return fmt.Errorf("id number already registered: %w", sentinel.ErrAlreadyExists)
	}
	if _, exists := s.applicants[a.ID]; exists {
		return fmt.Errorf("applicant id already used: %w", sentinel.ErrAlreadyExists)
	}
	stored := *a
	s.applicants[a.ID] = &stored
	s.idNumbers[key] = a.ID
	return nil
}

// FindByID retrieves an applicant by ID.
func (s *InMemory) FindByID(_ context.Context, id domain.ApplicantID) (*models.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.applicants[id]; ok {
		out := *a
		return &out, nil
	}
	return nil, ErrNotFound
}

// FindByIDNumber retrieves an applicant by ID type and number.
func (s *InMemory) FindByIDNumber(_ context.Context, idType idnumber.IDType, number string) (*models.Applicant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.idNumbers[idNumberKey(idType, number)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *s.applicants[id]
	return &out, nil
}

// List returns applicants matching the filter, newest first.
func (s *InMemory) List(_ context.Context, filter models.ListFilter) ([]*models.Applicant, int, error) {
	s.mu.RLock()
	matched := make([]*models.Applicant, 0, len(s.applicants))
	for _, a := range s.applicants {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.IDType != "" && a.IDType != filter.IDType {
			continue
		}
		out := *a
		matched = append(matched, &out)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return []*models.Applicant{}, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < total {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], total, nil
}

// UpdateStatus applies change only if the applicant is still in change.From.
// It returns sentinel.ErrInvalidState when the status has moved on.
func (s *InMemory) UpdateStatus(_ context.Context, change models.StatusChange) (*models.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.applicants[change.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if a.Status != change.From {
		return nil, fmt.Errorf("applicant is %s: %w", a.Status, sentinel.ErrInvalidState)
	}
	a.Status = change.To
	a.StatusReason = change.Reason
	a.DecidedBy = change.Actor
	a.UpdatedAt = change.At
	out := *a
	return &out, nil
}
