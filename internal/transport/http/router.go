package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	identityhandler "testadmin/internal/identity/handler"
	"testadmin/internal/platform/health"
	"testadmin/internal/platform/metrics"
	registrationhandler "testadmin/internal/registration/handler"
	"testadmin/pkg/platform/middleware/admin"
	"testadmin/pkg/platform/middleware/request"
	"testadmin/pkg/platform/validation"
)

const requestTimeout = 30 * time.Second

// Deps are the handlers and settings the router mounts.
type Deps struct {
	Logger         *slog.Logger
	Identity       *identityhandler.Handler
	Registration   *registrationhandler.Handler
	Health         *health.Handler
	Registry       *prometheus.Registry
	RequestMetrics *request.Metrics
	AdminToken     string
}

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientIP)
	r.Use(request.Logger(d.Logger))
	if d.RequestMetrics != nil {
		r.Use(request.Latency(d.RequestMetrics))
	}
	r.Use(request.Timeout(requestTimeout))
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.ContentTypeJSON)

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Registry != nil {
		r.Handle("/metrics", metrics.Handler(d.Registry))
	}

	if d.Identity != nil {
		d.Identity.Register(r)
	}
	if d.Registration != nil {
		d.Registration.Register(r)
		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(d.AdminToken, d.Logger))
			d.Registration.RegisterAdmin(r)
		})
	}

	return r
}
