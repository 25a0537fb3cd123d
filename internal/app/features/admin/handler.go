// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/scanmenu/admindesk/internal/app/system/auditlog"
	"github.com/scanmenu/admindesk/internal/app/system/auth"
	"github.com/scanmenu/admindesk/internal/app/system/console"
	"github.com/scanmenu/admindesk/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Base is the mount point of the console; tab URLs are built on it.
const Base = "/admin"

// ConsoleFactory builds the console of a signed-in admin. The console
// talks to the API with the admin's own token.
type ConsoleFactory func(u *auth.SessionUser) (*console.Console, error)

type Handler struct {
	Consoles   *console.Hub
	NewConsole ConsoleFactory
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger

	// WaitLimit bounds how long a request with wait=1 blocks for loads to
	// settle. Zero uses timeouts.Medium().
	WaitLimit time.Duration
}

func NewHandler(hub *console.Hub, factory ConsoleFactory, sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Consoles:   hub,
		NewConsole: factory,
		SessionMgr: sm,
		AuditLog:   audit,
		Log:        logger,
	}
}

// console returns the caller's console, creating it on first use. It
// writes the response itself and returns ok=false when there is none to
// use: no admin in context, the factory failed, or the API already
// rejected the session.
func (h *Handler) console(w http.ResponseWriter, r *http.Request) (*console.Console, *auth.SessionUser, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		auth.Unauthorized(w, r, "unauthorized")
		return nil, nil, false
	}

	if u.ConsoleID == "" {
		u.ConsoleID = uuid.NewString()
		if h.SessionMgr != nil {
			if err := h.SessionMgr.SetConsoleID(w, r, u.ConsoleID); err != nil {
				h.Log.Warn("save console id failed", zap.Error(err), zap.String("user_id", u.ID))
			}
		}
	}

	c, err := h.Consoles.GetOrCreate(u.ConsoleID, func() (*console.Console, error) {
		return h.NewConsole(u)
	})
	if err != nil {
		h.Log.Error("create console failed", zap.Error(err), zap.String("user_id", u.ID))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Unable to open the console."})
		return nil, nil, false
	}
	if c.Expired() {
		h.expire(w, r, u)
		return nil, nil, false
	}
	return c, u, true
}

// expire ends a session the API no longer accepts: the console is dropped,
// the cookie cleared and the caller sent to sign in again.
func (h *Handler) expire(w http.ResponseWriter, r *http.Request, u *auth.SessionUser) {
	h.Consoles.Drop(u.ConsoleID)
	h.AuditLog.SessionExpired(r.Context(), auditlog.ActorFromRequest(r, u.ID, u.Email))
	if h.SessionMgr != nil {
		if err := h.SessionMgr.Clear(w, r); err != nil {
			h.Log.Warn("clear expired session failed", zap.Error(err))
		}
	}
	auth.Unauthorized(w, r, "session expired")
}

// maybeWait blocks until the console is idle when the request asks for it
// with wait=1, bounded by WaitLimit.
func (h *Handler) maybeWait(r *http.Request, c *console.Console) {
	if r.FormValue("wait") == "" {
		return
	}
	limit := h.WaitLimit
	if limit <= 0 {
		limit = timeouts.Medium()
	}
	ctx, cancel := context.WithTimeout(r.Context(), limit)
	defer cancel()
	if err := c.WaitIdle(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		h.Log.Warn("wait for console failed", zap.Error(err))
	}
}

// respondView writes the active tab's view, or expires the session if a
// load came back 401.
func (h *Handler) respondView(w http.ResponseWriter, r *http.Request, c *console.Console, u *auth.SessionUser, status int) {
	v := c.View(Base)
	if v.Expired {
		h.expire(w, r, u)
		return
	}
	writeJSON(w, status, v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// formInt reads an integer form value; missing is def, malformed is an
// error.
func formInt(r *http.Request, key string, def int) (int, error) {
	s := r.FormValue(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
