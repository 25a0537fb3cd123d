// internal/app/features/admin/collections.go
package admin

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/scanmenu/admindesk/internal/app/system/auth"
	"github.com/scanmenu/admindesk/internal/app/system/collection"
	"github.com/scanmenu/admindesk/internal/app/system/console"
	"github.com/scanmenu/admindesk/internal/domain/models"
)

// fetcher resolves {resource} for the caller's console.
func (h *Handler) fetcher(w http.ResponseWriter, r *http.Request) (*console.Console, *auth.SessionUser, collection.Fetcher, bool) {
	c, u, ok := h.console(w, r)
	if !ok {
		return nil, nil, nil, false
	}
	res := models.Resource(chi.URLParam(r, "resource"))
	f, found := c.Fetcher(res)
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown collection"})
		return nil, nil, nil, false
	}
	return c, u, f, true
}

// respondCollection writes one collection's state.
func (h *Handler) respondCollection(w http.ResponseWriter, r *http.Request, c *console.Console, u *auth.SessionUser, f collection.Fetcher, status int) {
	h.maybeWait(r, c)
	if c.Expired() {
		h.expire(w, r, u)
		return
	}
	writeJSON(w, status, f.View())
}

// HandleFilters handles POST /admin/collections/{resource}/filters. Only
// the resource's known filter keys are read; an empty value clears a
// filter. The fetch is debounced, so the response is 202 with the state
// as it stands.
func (h *Handler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	c, u, f, ok := h.fetcher(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid form data"})
		return
	}

	partial := map[string]string{}
	for _, key := range console.AllowedFilters(f.Resource()) {
		if vals, present := r.Form[key]; present {
			v := ""
			if len(vals) > 0 {
				v = strings.TrimSpace(vals[0])
			}
			partial[key] = v
		}
	}
	if len(partial) > 0 {
		f.SetFilters(partial)
	}
	if field := strings.TrimSpace(r.FormValue("sortBy")); field != "" {
		f.SetSort(field, r.FormValue("sortOrder"))
	}
	h.respondCollection(w, r, c, u, f, http.StatusAccepted)
}

// HandlePage handles POST /admin/collections/{resource}/page.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	c, u, f, ok := h.fetcher(w, r)
	if !ok {
		return
	}
	page, err := formInt(r, "page", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid page"})
		return
	}
	limit, err := formInt(r, "limit", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid limit"})
		return
	}
	f.SetPagination(page, limit)
	h.respondCollection(w, r, c, u, f, http.StatusOK)
}

// HandleRefresh handles POST /admin/collections/{resource}/refresh.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	c, u, f, ok := h.fetcher(w, r)
	if !ok {
		return
	}
	f.Refresh()
	h.respondCollection(w, r, c, u, f, http.StatusOK)
}
