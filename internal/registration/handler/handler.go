package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"testadmin/internal/identity/idnumber"
	"testadmin/internal/registration/models"
	"testadmin/pkg/domain"
	dErrors "testadmin/pkg/domain-errors"
	"testadmin/pkg/platform/httputil"
	"testadmin/pkg/platform/validation"
	"testadmin/pkg/requestcontext"
)

const (
	// HeaderIdempotencyKey makes POST /applicants safe to retry.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderReplayed is set on responses served from an earlier request.
	HeaderReplayed = "Idempotent-Replayed"
)

// Service defines the registration operations the handler needs.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegistrationResult, error)
	Get(ctx context.Context, id domain.ApplicantID) (*models.Applicant, error)
	List(ctx context.Context, filter models.ListFilter) (*models.Page, error)
	UpdateStatus(ctx context.Context, id domain.ApplicantID, req *models.UpdateStatusRequest) (*models.Applicant, error)
}

// Handler serves the applicant endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new registration Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: svc,
	}
}

// Register registers the public applicant routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applicants", h.HandleRegister)
	r.Get("/applicants", h.HandleList)
	r.Get("/applicants/{id}", h.HandleGet)
}

// RegisterAdmin registers the back-office routes. Callers mount them behind
// the admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Patch("/admin/applicants/{id}/status", h.HandleUpdateStatus)
}

// HandleRegister creates an applicant. A replay of a completed request with
// the same Idempotency-Key returns the original applicant with 200.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[models.RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))

	res, err := h.service.Register(ctx, req)
	if err != nil {
		h.logFailure(ctx, "register applicant failed", err)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Location", "/applicants/"+res.Applicant.ID.String())
	if res.Replayed {
		w.Header().Set(HeaderReplayed, "true")
		httputil.WriteJSON(w, http.StatusOK, toApplicantResponse(res.Applicant))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toApplicantResponse(res.Applicant))
}

// HandleGet returns one applicant.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.applicantID(w, r)
	if !ok {
		return
	}
	applicant, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logFailure(r.Context(), "get applicant failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicantResponse(applicant))
}

// HandleList returns applicants filtered by status and ID type.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := validation.ParsePage(q.Get("limit"), q.Get("offset"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filter := models.ListFilter{
		Status: models.Status(strings.ToLower(strings.TrimSpace(q.Get("status")))),
		IDType: idnumber.IDType(strings.ToUpper(strings.TrimSpace(q.Get("id_type")))),
		Limit:  limit,
		Offset: offset,
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logFailure(r.Context(), "list applicants failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(page))
}

// HandleUpdateStatus approves or rejects a pending applicant.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.applicantID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[models.UpdateStatusRequest](w, r, h.logger)
	if !ok {
		return
	}

	applicant, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		h.logFailure(r.Context(), "update applicant status failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplicantResponse(applicant))
}

func (h *Handler) applicantID(w http.ResponseWriter, r *http.Request) (domain.ApplicantID, bool) {
	id, err := domain.ParseApplicantID(chi.URLParam(r, "id"))
	if err != nil || id.IsNil() {
		httputil.WriteError(w, dErrors.NewField(dErrors.CodeBadRequest, "id", "invalid applicant id"))
		return domain.ApplicantID{}, false
	}
	return id, true
}

// logFailure logs server-side failures. Client errors are expected traffic
// and stay at debug.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelDebug
	if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeUnavailable) {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
