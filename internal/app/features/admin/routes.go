// internal/app/features/admin/routes.go
package admin

import (
	"github.com/go-chi/chi/v5"
	"github.com/scanmenu/admindesk/internal/app/system/auth"
)

// Routes wires the console under whatever mount point the top-level
// router chooses (Base, "/admin").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeConsole)
		pr.Post("/tab", h.HandleTab)

		pr.Route("/collections/{resource}", func(cr chi.Router) {
			cr.Post("/filters", h.HandleFilters)
			cr.Post("/page", h.HandlePage)
			cr.Post("/refresh", h.HandleRefresh)
		})

		pr.Post("/businesses/{id}/{action}", h.HandleBusinessAction)
		pr.Post("/users/{id}/{action}", h.HandleUserAction)

		pr.Get("/search", h.ServeSearch)
		pr.Get("/notifications", h.ServeNotifications)
		pr.Post("/notifications/{id}/read", h.HandleNotificationRead)
		pr.Post("/notices/{id}/dismiss", h.HandleNoticeDismiss)
		pr.Get("/activity", h.ServeActivity)
	})

	return r
}
