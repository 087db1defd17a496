package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"testadmin/pkg/requestcontext"
	"testadmin/pkg/secrets"
)

// AdminMiddlewareSuite tests the admin token guard.
//
// Justification: Security-critical. A wrong or missing token must never
// reach the handler, and an unconfigured token must not open the routes.
type AdminMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestAdminMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AdminMiddlewareSuite))
}

func (s *AdminMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *AdminMiddlewareSuite) serve(expected string, headers map[string]string) (*httptest.ResponseRecorder, bool, string) {
	called := false
	actor := ""
	h := RequireAdminToken(expected, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		actor = requestcontext.AdminActor(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPatch, "/admin/applicants/x/status", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, called, actor
}

func (s *AdminMiddlewareSuite) TestTokenValidation() {
	s.Run("correct token reaches handler", func() {
		rec, called, _ := s.serve("secret", map[string]string{HeaderToken: "secret"})
		s.True(called)
		s.Equal(http.StatusOK, rec.Code)
	})
	s.Run("wrong token is 401", func() {
		rec, called, _ := s.serve("secret", map[string]string{HeaderToken: "guess"})
		s.False(called)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Contains(rec.Body.String(), "unauthorized")
	})
	s.Run("missing token is 401", func() {
		rec, called, _ := s.serve("secret", nil)
		s.False(called)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
	s.Run("bcrypt hashed token is accepted", func() {
		hash, err := secrets.Hash("secret")
		s.Require().NoError(err)
		_, called, _ := s.serve(hash, map[string]string{HeaderToken: "secret"})
		s.True(called)
		_, called, _ = s.serve(hash, map[string]string{HeaderToken: hash})
		s.False(called)
	})
	s.Run("unconfigured token disables the routes", func() {
		rec, called, _ := s.serve("", map[string]string{HeaderToken: ""})
		s.False(called)
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})
}

func (s *AdminMiddlewareSuite) TestActorAttribution() {
	s.Run("actor header is recorded", func() {
		_, _, actor := s.serve("secret", map[string]string{HeaderToken: "secret", HeaderActorID: "ops@example.com"})
		s.Equal("ops@example.com", actor)
	})
	s.Run("missing actor falls back to anonymous", func() {
		_, _, actor := s.serve("secret", map[string]string{HeaderToken: "secret"})
		s.Equal(AnonymousActor, actor)
	})
	s.Run("malformed actor falls back to anonymous", func() {
		_, _, actor := s.serve("secret", map[string]string{HeaderToken: "secret", HeaderActorID: "bob\nadmin"})
		s.Equal(AnonymousActor, actor)
	})
}
