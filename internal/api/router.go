package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/garagelink/internal/api/middleware"
	"github.com/kiranshivaraju/garagelink/internal/api/response"
	"github.com/kiranshivaraju/garagelink/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler     http.HandlerFunc
	CustomerJobs      http.HandlerFunc
	CustomerAnalytics http.HandlerFunc
	MechanicJobs      http.HandlerFunc
	GetJob            http.HandlerFunc
	GetJobStatus      http.HandlerFunc
	UpdateJobStatus   http.HandlerFunc
	CancelJob         http.HandlerFunc
	AssignJob         http.HandlerFunc
	OpenConversation  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.With(deps.Auth.RequireSelf("customerID")).
			Get("/api/v1/customers/{customerID}/jobs", orNotImplemented(deps.CustomerJobs))
		r.With(deps.Auth.RequireSelf("customerID")).
			Get("/api/v1/customers/{customerID}/analytics", orNotImplemented(deps.CustomerAnalytics))
		r.With(deps.Auth.RequireSelf("mechanicID")).
			Get("/api/v1/mechanics/{mechanicID}/jobs", orNotImplemented(deps.MechanicJobs))

		r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.GetJob))
		r.Get("/api/v1/jobs/{jobID}/status", orNotImplemented(deps.GetJobStatus))
		r.Patch("/api/v1/jobs/{jobID}/status", orNotImplemented(deps.UpdateJobStatus))
		r.Post("/api/v1/jobs/{jobID}/cancel", orNotImplemented(deps.CancelJob))

		// Only the job's customer side picks the mechanic
		r.With(deps.Auth.RequireRole(models.RoleCustomer)).
			Post("/api/v1/jobs/{jobID}/assign", orNotImplemented(deps.AssignJob))

		r.Post("/api/v1/conversations", orNotImplemented(deps.OpenConversation))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
