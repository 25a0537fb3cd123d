// internal/app/features/login/routes.go
package login

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes serves the sign-in form description and the credential post.
// Responses carry session cookies and must not be cached.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}
