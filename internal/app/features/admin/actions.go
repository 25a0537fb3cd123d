// internal/app/features/admin/actions.go
package admin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/scanmenu/admindesk/internal/app/system/apiclient"
	"github.com/scanmenu/admindesk/internal/app/system/auditlog"
	"github.com/scanmenu/admindesk/internal/app/system/auth"
	"github.com/scanmenu/admindesk/internal/app/system/console"
	"github.com/scanmenu/admindesk/internal/app/system/notices"
)

// actionResult is the body of every action response. The view is omitted
// on failure: nothing changed.
type actionResult struct {
	OK     bool           `json:"ok"`
	Notice notices.Notice `json:"notice"`
	View   *console.View  `json:"view,omitempty"`
}

// HandleBusinessAction handles POST /admin/businesses/{id}/{action} with
// action one of approve, reject, archive, restore. Reject reads an optional
// "reason" form value.
func (h *Handler) HandleBusinessAction(w http.ResponseWriter, r *http.Request) {
	c, u, ok := h.console(w, r)
	if !ok {
		return
	}
	n, err := c.Business(r.Context(), actor(r, u), console.BusinessAction{
		ID:     chi.URLParam(r, "id"),
		Action: chi.URLParam(r, "action"),
		Reason: r.FormValue("reason"),
	})
	h.respondAction(w, r, c, u, n, err)
}

// HandleUserAction handles POST /admin/users/{id}/{action} with action one
// of activate, deactivate, delete, role. Role reads the "role" form value.
func (h *Handler) HandleUserAction(w http.ResponseWriter, r *http.Request) {
	c, u, ok := h.console(w, r)
	if !ok {
		return
	}
	n, err := c.User(r.Context(), actor(r, u), console.UserAction{
		ID:     chi.URLParam(r, "id"),
		Action: chi.URLParam(r, "action"),
		Role:   r.FormValue("role"),
	})
	h.respondAction(w, r, c, u, n, err)
}

func (h *Handler) respondAction(w http.ResponseWriter, r *http.Request, c *console.Console, u *auth.SessionUser, n notices.Notice, err error) {
	switch {
	case err == nil:
		h.maybeWait(r, c)
		v := c.View(Base)
		if v.Expired {
			h.expire(w, r, u)
			return
		}
		writeJSON(w, http.StatusOK, actionResult{OK: true, Notice: n, View: &v})
	case apiclient.IsUnauthorized(err):
		h.expire(w, r, u)
	case errors.Is(err, console.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, actionResult{Notice: n})
	default:
		writeJSON(w, http.StatusBadGateway, actionResult{Notice: n})
	}
}

func actor(r *http.Request, u *auth.SessionUser) auditlog.Actor {
	return auditlog.ActorFromRequest(r, u.ID, u.Email)
}
