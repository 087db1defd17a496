package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"testadmin/internal/identity/idnumber"
	identity "testadmin/internal/identity/service"
	"testadmin/internal/registration/service"
	"testadmin/internal/registration/store/applicant"
	"testadmin/internal/registration/store/idempotency"
	"testadmin/pkg/platform/httputil"
	"testadmin/pkg/platform/middleware/admin"
)

const adminToken = "s3cret-admin-token"

// HandlerSuite drives the applicant routes through a chi router backed by
// the real service and in-memory stores.
type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validator := identity.New(idnumber.NewValidator(idnumber.WithCenturyPivot(25)), logger)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := service.New(applicant.NewInMemory(), idempotency.NewInMemory(), validator, logger,
		service.WithMinAge(16),
		service.WithClock(func() time.Time { return now }),
	)

	h := New(svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(adminToken, logger))
		h.RegisterAdmin(r)
	})
	s.router = r
}

func (s *HandlerSuite) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) applicant(rec *httptest.ResponseRecorder) ApplicantResponse {
	var resp ApplicantResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func (s *HandlerSuite) errorBody(rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	var resp httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

const saBody = `{"first_name":"Thandi","last_name":"Nkosi","email":"thandi@example.com","id_type":"SA_ID","id_number":"8001015009087"}`

func (s *HandlerSuite) register() ApplicantResponse {
	rec := s.do(http.MethodPost, "/applicants", saBody, nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return s.applicant(rec)
}

func (s *HandlerSuite) TestRegister_Created() {
	rec := s.do(http.MethodPost, "/applicants", saBody, nil)

	s.Require().Equal(http.StatusCreated, rec.Code)
	resp := s.applicant(rec)
	s.Equal("/applicants/"+resp.ID, rec.Header().Get("Location"))
	s.Equal("****9087", resp.IDNumber)
	s.Equal("pending", resp.Status)
	s.Require().NotNil(resp.DateOfBirth)
	s.Equal("1980-01-01", *resp.DateOfBirth)
	s.Equal("male", *resp.Gender)
	s.Equal("citizen", *resp.Citizenship)
	s.NotContains(rec.Body.String(), "8001015009087")
}

func (s *HandlerSuite) TestRegister_InvalidIDNumberIs422() {
	rec := s.do(http.MethodPost, "/applicants",
		`{"first_name":"A","last_name":"B","email":"a@example.com","id_type":"SA_ID","id_number":"8001015009088"}`, nil)

	s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)
	body := s.errorBody(rec)
	s.Equal("validation_error", body.Error)
	s.Equal("id_number", body.Field)
	s.Equal(idnumber.MsgChecksum, body.Description)
}

func (s *HandlerSuite) TestRegister_UnsupportedTypeIs422() {
	rec := s.do(http.MethodPost, "/applicants",
		`{"first_name":"A","last_name":"B","email":"a@example.com","id_type":"DRIVERS_LICENCE","id_number":"1234"}`, nil)

	s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal("id_type", s.errorBody(rec).Field)
}

func (s *HandlerSuite) TestRegister_MalformedJSONIs400() {
	rec := s.do(http.MethodPost, "/applicants", `{"first_name":`, nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/applicants", `{"first_name":"A","unknown":true}`, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestRegister_DuplicateIs409() {
	s.register()
	rec := s.do(http.MethodPost, "/applicants", saBody, nil)

	s.Require().Equal(http.StatusConflict, rec.Code)
	s.Equal("id_number", s.errorBody(rec).Field)
}

func (s *HandlerSuite) TestRegister_IdempotentReplay() {
	headers := map[string]string{HeaderIdempotencyKey: "abc-123"}
	first := s.do(http.MethodPost, "/applicants", saBody, headers)
	s.Require().Equal(http.StatusCreated, first.Code)

	second := s.do(http.MethodPost, "/applicants", saBody, headers)
	s.Require().Equal(http.StatusOK, second.Code)
	s.Equal("true", second.Header().Get(HeaderReplayed))
	s.Equal(s.applicant(first).ID, s.applicant(second).ID)

	changed := strings.Replace(saBody, "Thandi", "Thandeka", 1)
	third := s.do(http.MethodPost, "/applicants", changed, headers)
	s.Require().Equal(http.StatusUnprocessableEntity, third.Code)
	s.Equal("idempotency_key", s.errorBody(third).Field)
}

func (s *HandlerSuite) TestGet() {
	created := s.register()

	rec := s.do(http.MethodGet, "/applicants/"+created.ID, "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(created.ID, s.applicant(rec).ID)

	rec = s.do(http.MethodGet, "/applicants/not-a-uuid", "", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/applicants/6d1f2b8e-8a1e-4d1c-9a55-3a2b1c0d9e8f", "", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestList() {
	s.register()
	rec := s.do(http.MethodPost, "/applicants",
		`{"first_name":"Jan","last_name":"Smit","email":"jan@example.com","id_type":"PASSPORT","id_number":"a1234567","date_of_birth":"1990-05-05"}`, nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/applicants?id_type=passport&status=PENDING", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var page ListResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &page))
	s.Equal(1, page.Total)
	s.Require().Len(page.Applicants, 1)
	s.Equal("PASSPORT", page.Applicants[0].IDType)
	s.Equal("****4567", page.Applicants[0].IDNumber)

	rec = s.do(http.MethodGet, "/applicants?limit=1", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &page))
	s.Equal(2, page.Total)
	s.Len(page.Applicants, 1)
	s.Equal(1, page.Limit)

	rec = s.do(http.MethodGet, "/applicants?limit=zero", "", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/applicants?status=archived", "", nil)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *HandlerSuite) TestUpdateStatus_RequiresAdminToken() {
	created := s.register()
	rec := s.do(http.MethodPatch, "/admin/applicants/"+created.ID+"/status", `{"status":"approved"}`, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestUpdateStatus_Lifecycle() {
	created := s.register()
	headers := map[string]string{
		admin.HeaderToken:   adminToken,
		admin.HeaderActorID: "ops@example.com",
	}
	path := "/admin/applicants/" + created.ID + "/status"

	rec := s.do(http.MethodPatch, path, `{"status":"rejected"}`, headers)
	s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal("reason", s.errorBody(rec).Field)

	rec = s.do(http.MethodPatch, path, `{"status":"rejected","reason":"document mismatch"}`, headers)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	resp := s.applicant(rec)
	s.Equal("rejected", resp.Status)
	s.Equal("document mismatch", resp.StatusReason)
	s.Equal("ops@example.com", resp.DecidedBy)

	rec = s.do(http.MethodPatch, path, `{"status":"approved"}`, headers)
	s.Require().Equal(http.StatusConflict, rec.Code)
	s.Equal("invalid_transition", s.errorBody(rec).Error)
}
