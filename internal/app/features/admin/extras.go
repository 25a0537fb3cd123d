// internal/app/features/admin/extras.go
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/scanmenu/admindesk/internal/app/store/audit"
	"github.com/scanmenu/admindesk/internal/app/system/notices"
	"github.com/scanmenu/admindesk/internal/app/system/search"
	"github.com/scanmenu/admindesk/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ServeSearch handles GET /admin/search?q=&limit=. Results come from the
// records the console has loaded and are not authoritative.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.console(w, r)
	if !ok {
		return
	}
	limit, err := formInt(r, "limit", search.DefaultLimit)
	if err != nil || limit <= 0 {
		limit = search.DefaultLimit
	}
	writeJSON(w, http.StatusOK, c.Search(r.URL.Query().Get("q"), limit))
}

type notificationsBody struct {
	Notifications []notices.Notification `json:"notifications"`
	Unread        int                    `json:"unread"`
}

// ServeNotifications handles GET /admin/notifications.
func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.console(w, r)
	if !ok {
		return
	}
	list := c.Notifications()
	writeJSON(w, http.StatusOK, notificationsBody{Notifications: list, Unread: notices.Unread(list)})
}

// HandleNotificationRead handles POST /admin/notifications/{id}/read.
func (h *Handler) HandleNotificationRead(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.console(w, r)
	if !ok {
		return
	}
	if !c.MarkNotificationRead(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown notification"})
		return
	}
	list := c.Notifications()
	writeJSON(w, http.StatusOK, notificationsBody{Notifications: list, Unread: notices.Unread(list)})
}

// HandleNoticeDismiss handles POST /admin/notices/{id}/dismiss.
func (h *Handler) HandleNoticeDismiss(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.console(w, r)
	if !ok {
		return
	}
	if !c.Notices().Dismiss(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown notice"})
		return
	}
	writeJSON(w, http.StatusOK, c.Notices().List())
}

// ServeActivity handles GET /admin/activity: the signed-in admin's own
// audit trail, newest first.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.console(w, r)
	if !ok {
		return
	}
	limit, err := formInt(r, "limit", defaultActivityLimit)
	if err != nil || limit <= 0 {
		limit = defaultActivityLimit
	}
	limit = min(limit, maxActivityLimit)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "activity")
	defer cancel()

	events, err := h.AuditLog.Activity(ctx, u.ID, int64(limit))
	if err != nil {
		h.Log.Error("load activity failed", zap.Error(err), zap.String("user_id", u.ID))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Unable to load activity."})
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
