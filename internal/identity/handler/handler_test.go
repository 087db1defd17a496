package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"testadmin/internal/identity/idnumber"
	"testadmin/internal/identity/service"
)

// HandlerSuite exercises the identity routes against the real validator.
type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(idnumber.NewValidator(idnumber.WithCenturyPivot(25)), logger)
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) post(body string) (*httptest.ResponseRecorder, ValidateResponse) {
	req := httptest.NewRequest(http.MethodPost, "/identity/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp ValidateResponse
	if rec.Code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func (s *HandlerSuite) TestValidSAID() {
	rec, resp := s.post(`{"id_type":"SA_ID","id_number":"8001015009087"}`)

	s.Require().Equal(http.StatusOK, rec.Code)
	s.True(resp.Valid)
	s.Equal("SA_ID", resp.IDType)
	s.Empty(resp.Error)
	s.Require().NotNil(resp.DateOfBirth)
	s.Equal("1980-01-01", *resp.DateOfBirth)
	s.Equal("male", *resp.Gender)
	s.Equal("citizen", *resp.Citizenship)
}

func (s *HandlerSuite) TestIDTypeIsNormalized() {
	_, resp := s.post(`{"id_type":" passport ","id_number":"A1234567"}`)
	s.True(resp.Valid)
	s.Equal("PASSPORT", resp.IDType)
	s.Nil(resp.DateOfBirth)
}

func (s *HandlerSuite) TestInvalidOutcomeIsStill200() {
	rec, resp := s.post(`{"id_type":"SA_ID","id_number":"8001015009088"}`)

	s.Equal(http.StatusOK, rec.Code)
	s.False(resp.Valid)
	s.Equal("checksum", resp.ErrorKind)
	s.Equal(idnumber.MsgChecksum, resp.Error)
	s.Nil(resp.Gender)
}

func (s *HandlerSuite) TestUnsupportedType() {
	_, resp := s.post(`{"id_type":"drivers","id_number":"1234"}`)
	s.False(resp.Valid)
	s.Equal("unsupported_type", resp.ErrorKind)
	s.Equal("Unsupported ID type: DRIVERS", resp.Error)
}

func (s *HandlerSuite) TestMalformedBodyIs400() {
	rec, _ := s.post(`{"id_type":`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestOversizedIDNumberIs422() {
	body, err := json.Marshal(ValidateRequest{IDType: "PASSPORT", IDNumber: strings.Repeat("A", 65)})
	s.Require().NoError(err)
	rec, _ := s.post(string(bytes.TrimSpace(body)))
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *HandlerSuite) TestListTypes() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/identity/types", nil))

	s.Require().Equal(http.StatusOK, rec.Code)
	var resp TypesResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal([]string{"SA_ID", "FOREIGN_ID", "PASSPORT"}, resp.IDTypes)
}
