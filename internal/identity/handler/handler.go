package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"testadmin/internal/identity/idnumber"
	"testadmin/internal/identity/service"
	"testadmin/pkg/platform/httputil"
)

// Service defines the interface for ID number validation.
type Service interface {
	Validate(ctx context.Context, idType idnumber.IDType, raw string) service.Result
}

// Handler serves the identity validation endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new identity Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: svc,
	}
}

// Register registers the identity routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/identity/validate", h.HandleValidate)
	r.Get("/identity/types", h.HandleListTypes)
}

// HandleValidate runs a single validation. A failed outcome is a successful
// request and is returned with 200.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger)
	if !ok {
		return
	}

	res := h.service.Validate(r.Context(), req.idType(), req.IDNumber)
	httputil.WriteJSON(w, http.StatusOK, toValidateResponse(res))
}

// HandleListTypes returns the supported ID types.
func (h *Handler) HandleListTypes(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, supportedTypes())
}
