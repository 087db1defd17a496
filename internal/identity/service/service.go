// Package service exposes the ID number validator to request-scoped callers
// with logging, metrics and tracing around each check.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"testadmin/internal/identity/idnumber"
	"testadmin/internal/identity/metrics"
	"testadmin/internal/platform/tracer"
	"testadmin/pkg/requestcontext"
)

// unsupportedLabel replaces unknown ID type strings in metric labels.
const unsupportedLabel = "unsupported"

// Result is a validation outcome plus the attributes decoded from a valid
// SA ID number. The decoded fields are nil for other ID types.
type Result struct {
	idnumber.Outcome
	IDType      idnumber.IDType
	DateOfBirth *time.Time
	Gender      *idnumber.Gender
	Citizenship *idnumber.Citizenship
}

// Service validates ID numbers.
type Service struct {
	validator *idnumber.Validator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
}

type Option func(*Service)

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used for validation spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func New(validator *idnumber.Validator, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		validator: validator,
		logger:    logger,
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Validator returns the underlying validator.
func (s *Service) Validator() *idnumber.Validator {
	return s.validator
}

// Validate checks raw against idType. It never returns an error: every
// failure is reported through the Result's Outcome.
func (s *Service) Validate(ctx context.Context, idType idnumber.IDType, raw string) Result {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanIdentityValidate,
		tracer.String(tracer.AttrIDType, string(idType)),
		tracer.String(tracer.AttrIDHash, idnumber.Hash(idType, raw)),
	)

	res := s.validate(idType, raw)

	span.SetAttributes(tracer.Bool(tracer.AttrValid, res.Valid))
	if !res.Valid {
		span.SetAttributes(tracer.String(tracer.AttrErrorKind, string(res.Kind)))
	}
	span.End(nil)

	if s.metrics != nil {
		s.metrics.ObserveValidation(metricLabel(idType), res.Valid, time.Since(start))
	}

	if res.Valid {
		s.logger.DebugContext(ctx, "id number validated",
			"request_id", requestcontext.RequestID(ctx),
			"id_type", idType,
			"id_number", idnumber.Mask(raw),
		)
	} else {
		s.logger.InfoContext(ctx, "id number rejected",
			"request_id", requestcontext.RequestID(ctx),
			"id_type", idType,
			"id_number", idnumber.Mask(raw),
			"error_kind", res.Kind,
			"reason", res.Message,
		)
	}
	if res.Kind == idnumber.KindInternal {
		s.logger.ErrorContext(ctx, "id number validator failed unexpectedly",
			"request_id", requestcontext.RequestID(ctx),
			"id_type", idType,
		)
	}
	return res
}

// validate parses an SA ID number once and takes both the outcome and the
// decoded attributes from that parse.
func (s *Service) validate(idType idnumber.IDType, raw string) Result {
	if idType != idnumber.IDTypeSAID || strings.TrimSpace(raw) == "" {
		return Result{Outcome: s.validator.Validate(idType, raw), IDType: idType}
	}
	said := s.validator.ValidateSAID(raw)
	if !said.Valid {
		return Result{Outcome: said.Outcome, IDType: idType}
	}
	dob := said.Details.DateOfBirth
	gender := said.Details.Gender
	citizenship := said.Details.Citizenship
	return Result{
		Outcome:     said.Outcome,
		IDType:      idType,
		DateOfBirth: &dob,
		Gender:      &gender,
		Citizenship: &citizenship,
	}
}

func metricLabel(idType idnumber.IDType) string {
	if idType.IsValid() {
		return string(idType)
	}
	return unsupportedLabel
}
