// Package service implements the applicant registration workflow: ID number
// validation, derived attributes, age policy, duplicate detection and
// idempotent replays.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"testadmin/internal/identity/idnumber"
	identity "testadmin/internal/identity/service"
	"testadmin/internal/platform/tracer"
	"testadmin/internal/registration/metrics"
	"testadmin/internal/registration/models"
	"testadmin/internal/registration/store/idempotency"
	"testadmin/internal/sentinel"
	"testadmin/pkg/domain"
	dErrors "testadmin/pkg/domain-errors"
	platformsync "testadmin/pkg/platform/sync"
	"testadmin/pkg/platform/validation"
	"testadmin/pkg/requestcontext"
)

// ApplicantStore persists applicants.
// Error Contract:
// - Create returns sentinel.ErrAlreadyExists when the ID number is taken
// - FindByID and FindByIDNumber return sentinel.ErrNotFound on a miss
// - UpdateStatus returns sentinel.ErrInvalidState when the current status is not change.From
type ApplicantStore interface {
	Create(ctx context.Context, a *models.Applicant) error
	FindByID(ctx context.Context, id domain.ApplicantID) (*models.Applicant, error)
	FindByIDNumber(ctx context.Context, idType idnumber.IDType, number string) (*models.Applicant, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Applicant, int, error)
	UpdateStatus(ctx context.Context, change models.StatusChange) (*models.Applicant, error)
}

// IdempotencyStore tracks Idempotency-Key reservations.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*idempotency.Record, bool, error)
	Complete(ctx context.Context, key string, record idempotency.Record, ttl time.Duration) error
	Release(ctx context.Context, key, fingerprint string) error
}

// IdentityValidator checks ID numbers and decodes SA ID attributes.
type IdentityValidator interface {
	Validate(ctx context.Context, idType idnumber.IDType, raw string) identity.Result
}

// Publisher delivers applicant events.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// reservationTTL bounds how long a crashed request can hold its key. It
	// must outlast the HTTP request timeout.
	reservationTTL = 2 * time.Minute
)

// Service runs the registration workflow.
type Service struct {
	applicants     ApplicantStore
	idempotency    IdempotencyStore
	identity       IdentityValidator
	publisher      Publisher
	metrics        *metrics.Metrics
	tracer         tracer.Tracer
	logger         *slog.Logger
	locks          *platformsync.ShardedMutex
	now            func() time.Time
	minAge         int
	idempotencyTTL time.Duration
}

type Option func(*Service)

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used for registration spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithPublisher sets the event publisher. Events are discarded without one.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithMinAge rejects applicants younger than years. Zero disables the check.
func WithMinAge(years int) Option {
	return func(s *Service) {
		if years >= 0 {
			s.minAge = years
		}
	}
}

// WithIdempotencyTTL sets how long completed idempotency records are kept.
func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

// WithClock overrides the clock used for timestamps and age checks. Without
// it the request-scoped time is used.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(applicants ApplicantStore, idem IdempotencyStore, validator IdentityValidator, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		applicants:     applicants,
		idempotency:    idem,
		identity:       validator,
		logger:         logger,
		tracer:         tracer.NewNoop(),
		locks:          platformsync.NewShardedMutex(),
		idempotencyTTL: defaultIdempotencyTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register validates and stores a new applicant.
//
// When req carries an idempotency key, a repeat of a completed request
// returns the original applicant with Replayed set, a repeat with different
// content fails with CodeValidation, and a repeat while the first is still
// running fails with CodeConflict.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegistrationResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.recordRejection(metrics.ReasonInvalidRequest)
		return nil, err
	}

	idType := req.IDTypeValue()
	ctx, span := s.tracer.Start(ctx, tracer.SpanRegistrationRegister,
		tracer.String(tracer.AttrIDType, string(idType)),
		tracer.String(tracer.AttrIDHash, idnumber.Hash(idType, req.IDNumber)),
	)

	result, err := s.registerIdempotent(ctx, req)
	if err == nil {
		span.SetAttributes(
			tracer.String(tracer.AttrApplicant, result.Applicant.ID.String()),
			tracer.Bool(tracer.AttrIdempotent, result.Replayed),
		)
	}
	span.End(err)
	return result, err
}

func (s *Service) registerIdempotent(ctx context.Context, req *models.RegisterRequest) (*models.RegistrationResult, error) {
	key := req.IdempotencyKey
	if key == "" || s.idempotency == nil {
		return s.register(ctx, req)
	}

	fingerprint := req.Fingerprint()
	existing, reserved, err := s.idempotency.Reserve(ctx, key, fingerprint, reservationTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "idempotency store unavailable")
	}
	if !reserved {
		return s.replay(ctx, existing, fingerprint)
	}

	result, err := s.register(ctx, req)
	if err != nil {
		if releaseErr := s.idempotency.Release(ctx, key, fingerprint); releaseErr != nil {
			s.logger.WarnContext(ctx, "failed to release idempotency key",
				"request_id", requestcontext.RequestID(ctx),
				"error", releaseErr,
			)
		}
		return nil, err
	}

	record := idempotency.Record{Fingerprint: fingerprint, ApplicantID: result.Applicant.ID.String()}
	if err := s.idempotency.Complete(ctx, key, record, s.idempotencyTTL); err != nil {
		// The applicant exists; a retry will hit the duplicate check instead of a replay.
		s.logger.WarnContext(ctx, "failed to complete idempotency key",
			"request_id", requestcontext.RequestID(ctx),
			"applicant_id", result.Applicant.ID.String(),
			"error", err,
		)
	}
	return result, nil
}

func (s *Service) replay(ctx context.Context, existing *idempotency.Record, fingerprint string) (*models.RegistrationResult, error) {
	if existing == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "idempotency record missing")
	}
	if existing.Fingerprint != fingerprint {
		s.recordRejection(metrics.ReasonIdempotency)
		return nil, dErrors.NewField(dErrors.CodeValidation, "idempotency_key", "Idempotency-Key was already used with a different request body")
	}
	if existing.Pending() {
		s.recordRejection(metrics.ReasonIdempotency)
		return nil, dErrors.New(dErrors.CodeConflict, "a request with this Idempotency-Key is still in progress")
	}

	id, err := domain.ParseApplicantID(existing.ApplicantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "corrupt idempotency record")
	}
	applicant, err := s.applicants.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateStoreError(err, "failed to load applicant")
	}
	if s.metrics != nil {
		s.metrics.IncrementReplays()
	}
	s.logger.InfoContext(ctx, "registration replayed",
		"request_id", requestcontext.RequestID(ctx),
		"applicant_id", applicant.ID.String(),
	)
	return &models.RegistrationResult{Applicant: applicant, Replayed: true}, nil
}

func (s *Service) register(ctx context.Context, req *models.RegisterRequest) (*models.RegistrationResult, error) {
	idType := req.IDTypeValue()
	res := s.identity.Validate(ctx, idType, req.IDNumber)
	if !res.Valid {
		s.recordRejection(metrics.ReasonInvalidIDNumber)
		return nil, dErrors.NewField(dErrors.CodeValidation, "id_number", res.Message)
	}

	now := s.clock(ctx)
	dob, err := s.resolveDateOfBirth(req, res)
	if err != nil {
		return nil, err
	}
	if dob != nil && dob.After(now) {
		s.recordRejection(metrics.ReasonFutureDOB)
		return nil, dErrors.NewField(dErrors.CodeValidation, "date_of_birth", "date of birth cannot be in the future")
	}
	if s.minAge > 0 && dob != nil && !domain.IsAtLeast(*dob, now, s.minAge) {
		s.recordRejection(metrics.ReasonUnderAge)
		return nil, dErrors.NewField(dErrors.CodeValidation, "date_of_birth",
			fmt.Sprintf("applicant must be at least %d years old", s.minAge))
	}

	applicant := &models.Applicant{
		ID:          domain.NewApplicantID(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		IDType:      idType,
		IDNumber:    req.IDNumber,
		DateOfBirth: dob,
		Gender:      res.Gender,
		Citizenship: res.Citizenship,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	lockKey := string(idType) + ":" + req.IDNumber
	err = s.locks.WithLock(lockKey, func() error {
		_, findErr := s.applicants.FindByIDNumber(ctx, idType, req.IDNumber)
		if findErr == nil {
			return sentinel.ErrAlreadyExists
		}
		if !errors.Is(findErr, sentinel.ErrNotFound) {
			return findErr
		}
		return s.applicants.Create(ctx, applicant)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			s.recordRejection(metrics.ReasonDuplicate)
			return nil, dErrors.NewField(dErrors.CodeConflict, "id_number", "an applicant with this ID number is already registered")
		}
		return nil, s.translateStoreError(err, "failed to save applicant")
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistered(string(idType))
	}
	s.logger.InfoContext(ctx, "applicant registered",
		"request_id", requestcontext.RequestID(ctx),
		"applicant_id", applicant.ID.String(),
		"id_type", idType,
		"id_number", idnumber.Mask(req.IDNumber),
	)
	s.publish(ctx, applicant, models.EventApplicantRegistered, "")
	return &models.RegistrationResult{Applicant: applicant}, nil
}

// resolveDateOfBirth returns the birth date to store, or nil when none is
// known. SA ID numbers carry their own and a supplied date must agree with
// it. Other ID types rely on the supplied date, which is mandatory while an
// age policy is active.
func (s *Service) resolveDateOfBirth(req *models.RegisterRequest, res identity.Result) (*time.Time, error) {
	supplied, ok, err := req.SuppliedDateOfBirth()
	if err != nil {
		s.recordRejection(metrics.ReasonInvalidRequest)
		return nil, err
	}

	if res.DateOfBirth != nil {
		if ok && !supplied.Equal(*res.DateOfBirth) {
			s.recordRejection(metrics.ReasonDOBMismatch)
			return nil, dErrors.NewField(dErrors.CodeValidation, "date_of_birth", "date_of_birth does not match the ID number")
		}
		dob := *res.DateOfBirth
		return &dob, nil
	}

	if ok {
		return &supplied, nil
	}
	if s.minAge > 0 {
		s.recordRejection(metrics.ReasonInvalidRequest)
		return nil, dErrors.NewField(dErrors.CodeValidation, "date_of_birth", "date_of_birth is required for this ID type")
	}
	return nil, nil
}

// Get returns the applicant with id.
func (s *Service) Get(ctx context.Context, id domain.ApplicantID) (*models.Applicant, error) {
	if id.IsNil() {
		return nil, dErrors.NewField(dErrors.CodeBadRequest, "id", "applicant id is required")
	}
	applicant, err := s.applicants.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateStoreError(err, "failed to load applicant")
	}
	return applicant, nil
}

// List returns one page of applicants, newest first.
func (s *Service) List(ctx context.Context, filter models.ListFilter) (*models.Page, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.NewField(dErrors.CodeValidation, "status", "status must be one of pending, approved, rejected")
	}
	if filter.IDType != "" && !filter.IDType.IsValid() {
		return nil, dErrors.NewField(dErrors.CodeValidation, "id_type", fmt.Sprintf("Unsupported ID type: %s", filter.IDType))
	}
	if filter.Limit <= 0 {
		filter.Limit = validation.DefaultPageSize
	}
	if filter.Limit > validation.MaxPageSize {
		filter.Limit = validation.MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	applicants, total, err := s.applicants.List(ctx, filter)
	if err != nil {
		return nil, s.translateStoreError(err, "failed to list applicants")
	}
	return &models.Page{
		Applicants: applicants,
		Total:      total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// UpdateStatus records an admin decision on a pending applicant. The acting
// admin is taken from the request context.
func (s *Service) UpdateStatus(ctx context.Context, id domain.ApplicantID, req *models.UpdateStatusRequest) (*models.Applicant, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.Status(req.Status)
	if !current.Status.CanTransitionTo(next) {
		return nil, dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("cannot change status from %s to %s", current.Status, next))
	}

	actor := requestcontext.AdminActor(ctx)
	updated, err := s.applicants.UpdateStatus(ctx, models.StatusChange{
		ID:     id,
		From:   current.Status,
		To:     next,
		Reason: req.Reason,
		Actor:  actor,
		At:     s.clock(ctx),
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeInvalidTransition, "applicant status changed concurrently")
		}
		return nil, s.translateStoreError(err, "failed to update applicant status")
	}

	if s.metrics != nil {
		s.metrics.IncrementStatusChange(string(next))
	}
	s.logger.InfoContext(ctx, "applicant status changed",
		"request_id", requestcontext.RequestID(ctx),
		"applicant_id", id.String(),
		"from", current.Status,
		"to", next,
		"actor", actor,
	)
	s.publish(ctx, updated, models.EventApplicantStatusChanged, actor)
	return updated, nil
}

func (s *Service) clock(ctx context.Context) time.Time {
	if s.now != nil {
		return s.now()
	}
	return requestcontext.Now(ctx)
}

// publish emits an event after the change is stored. Failures are logged
// and never undo the change.
func (s *Service) publish(ctx context.Context, a *models.Applicant, eventType, actor string) {
	if s.publisher == nil {
		return
	}
	event := models.Event{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		OccurredAt:  s.clock(ctx).UTC(),
		ApplicantID: a.ID.String(),
		IDType:      string(a.IDType),
		IDHash:      idnumber.Hash(a.IDType, a.IDNumber),
		Status:      string(a.Status),
		Actor:       actor,
		RequestID:   requestcontext.RequestID(ctx),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish applicant event",
			"request_id", event.RequestID,
			"event_type", eventType,
			"applicant_id", event.ApplicantID,
			"error", err,
		)
	}
}

func (s *Service) recordRejection(reason string) {
	if s.metrics != nil {
		s.metrics.RecordRejection(reason)
	}
}

func (s *Service) translateStoreError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "applicant not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
