// internal/app/features/health/routes.go
package health

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes returns the health subrouter, mounted under /health.
// GET / checks dependencies; GET /live only proves the process answers.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Get("/", h.Serve)
	r.Head("/", h.Serve)
	r.Get("/live", h.Live)
	return r
}
