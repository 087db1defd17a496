// Package admin guards back-office routes with a shared static token.
package admin

import (
	"log/slog"
	"net/http"
	"regexp"

	dErrors "testadmin/pkg/domain-errors"
	"testadmin/pkg/platform/httputil"
	"testadmin/pkg/requestcontext"
	"testadmin/pkg/secrets"
)

const (
	HeaderToken   = "X-Admin-Token"
	HeaderActorID = "X-Admin-Actor-ID"

	// AnonymousActor is recorded when a valid token arrives without an actor.
	AnonymousActor = "admin"

	maxActorIDLength = 64
)

var validActorID = regexp.MustCompile(`^[a-zA-Z0-9@._-]+$`)

// RequireAdminToken rejects requests whose X-Admin-Token does not match
// expectedToken, given either in plaintext or as a bcrypt hash. An empty
// expectedToken disables the routes entirely.
// The X-Admin-Actor-ID header is recorded on the context for attribution.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if expectedToken == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "admin API is not configured"))
				return
			}

			token := r.Header.Get(HeaderToken)
			if !secrets.Match(token, expectedToken) {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			ctx = requestcontext.WithAdminActor(ctx, actorFrom(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actorFrom(r *http.Request) string {
	actor := r.Header.Get(HeaderActorID)
	if actor == "" || len(actor) > maxActorIDLength || !validActorID.MatchString(actor) {
		return AnonymousActor
	}
	return actor
}
