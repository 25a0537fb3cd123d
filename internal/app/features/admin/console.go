// internal/app/features/admin/console.go
package admin

import (
	"net/http"

	"github.com/scanmenu/admindesk/internal/app/system/tabs"
)

// ServeConsole handles GET /admin?activeTab=<token>. The tab comes from the
// URL so deep links and reloads land where the admin left off; an unknown
// or missing token opens the dashboard.
func (h *Handler) ServeConsole(w http.ResponseWriter, r *http.Request) {
	c, u, ok := h.console(w, r)
	if !ok {
		return
	}
	c.Activate(tabs.Initial(r.URL.Query()).Token)
	h.maybeWait(r, c)
	h.respondView(w, r, c, u, http.StatusOK)
}

// HandleTab handles POST /admin/tab. Unknown tokens open the
// not-implemented placeholder rather than failing.
func (h *Handler) HandleTab(w http.ResponseWriter, r *http.Request) {
	c, u, ok := h.console(w, r)
	if !ok {
		return
	}
	token := r.FormValue(tabs.Param)
	if token == "" {
		token = tabs.Default
	}
	c.Activate(token)
	h.maybeWait(r, c)
	h.respondView(w, r, c, u, http.StatusOK)
}
