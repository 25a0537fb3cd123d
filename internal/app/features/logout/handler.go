// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/scanmenu/admindesk/internal/app/system/auditlog"
	"github.com/scanmenu/admindesk/internal/app/system/auth"
	"go.uber.org/zap"
)

// Dropper closes a console. *console.Hub satisfies it.
type Dropper interface {
	Drop(id string)
}

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Consoles   Dropper
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, consoles Dropper, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Consoles:   consoles,
		AuditLog:   audit,
	}
}

// ServeLogout handles GET and POST /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		if u.ConsoleID != "" && h.Consoles != nil {
			h.Consoles.Drop(u.ConsoleID)
		}
		h.AuditLog.Logout(r.Context(), auditlog.ActorFromRequest(r, u.ID, u.Email))
	}

	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
