// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/scanmenu/admindesk/internal/app/system/apiclient"
	"github.com/scanmenu/admindesk/internal/app/system/auditlog"
	"github.com/scanmenu/admindesk/internal/app/system/auth"
	"github.com/scanmenu/admindesk/internal/app/system/ratelimit"
	"github.com/scanmenu/admindesk/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// DefaultReturn is where a signed-in admin lands without a return URL.
const DefaultReturn = "/admin"

// Authenticator exchanges admin credentials for an API token.
// *apiclient.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (apiclient.LoginResult, error)
}

type Handler struct {
	API        Authenticator
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger

	// Limiter throttles attempts per IP and email. Nil disables throttling.
	Limiter *ratelimit.LoginLimiter
}

func NewHandler(api Authenticator, sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		API:        api,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Log:        logger,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// credentials is the sign-in form, posted either form-encoded or as JSON.
type credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
	Return   string `json:"return"`
}

type loginPage struct {
	Action   string `json:"action"`
	Return   string `json:"return,omitempty"`
	Expired  bool   `json:"expired,omitempty"`
	SignedIn bool   `json:"signedIn"`
}

type loginResult struct {
	Redirect string `json:"redirect,omitempty"`
	Error    string `json:"error,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogin describes the sign-in form. A signed-in admin is sent on to
// the return URL.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := query.Get(r, "return")
	if u, ok := auth.CurrentUser(r); ok && auth.IsAdminRole(u.Role) {
		http.Redirect(w, r, urlutil.SafeReturn(ret, "", DefaultReturn), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, loginPage{
		Action:  "/login",
		Return:  ret,
		Expired: query.Get(r, "expired") != "",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	in, err := readCredentials(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, loginResult{Error: "Invalid form data."})
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	actor := auditlog.ActorFromRequest(r, "", in.Email)

	if err := validate.Struct(in); err != nil {
		writeJSON(w, http.StatusBadRequest, loginResult{Error: "Please enter your email and password."})
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, in.Email); !ok {
			h.AuditLog.LoginFailed(r.Context(), actor, "rate limited")
			writeJSON(w, http.StatusTooManyRequests, loginResult{Error: msg})
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	res, err := h.API.Login(ctx, in.Email, in.Password)
	if err != nil {
		h.AuditLog.LoginFailed(r.Context(), actor, apiclient.Reason(err))
		var mErr *apiclient.MutationError
		if apiclient.IsUnauthorized(err) || errors.As(err, &mErr) {
			writeJSON(w, http.StatusUnauthorized, loginResult{Error: "Invalid email or password."})
			return
		}
		h.Log.Error("login: API call failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, loginResult{Error: "Sign-in is unavailable: " + apiclient.Reason(err) + "."})
		return
	}

	actor.ID = res.User.ID
	if res.Token == "" {
		h.AuditLog.LoginFailed(r.Context(), actor, "no token in response")
		writeJSON(w, http.StatusBadGateway, loginResult{Error: "Sign-in is unavailable: the API returned no token."})
		return
	}
	if !auth.IsAdminRole(res.User.Role) {
		h.AuditLog.LoginForbidden(r.Context(), actor, res.User.Role)
		writeJSON(w, http.StatusForbidden, loginResult{Error: "This account does not have admin access."})
		return
	}

	su := auth.SessionUser{
		ID:        res.User.ID,
		Name:      res.User.Name,
		Email:     res.User.Email,
		Role:      strings.ToLower(res.User.Role),
		Token:     res.Token,
		ConsoleID: uuid.NewString(),
	}
	if su.Email == "" {
		su.Email = in.Email
	}
	if exp, ok := auth.TokenExpiry(res.Token); ok {
		su.TokenExpiry = exp
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", su.ID))
		writeJSON(w, http.StatusInternalServerError, loginResult{Error: "Unable to create session. Please try again."})
		return
	}

	h.AuditLog.LoginSuccess(r.Context(), actor, su.Role)
	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}

	dest := urlutil.SafeReturn(in.Return, "", DefaultReturn)
	if isFormPost(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, loginResult{Redirect: dest})
}

func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var in credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&in)
		return in, err
	}
	if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.Email = r.FormValue("email")
	in.Password = r.FormValue("password")
	in.Return = strings.TrimSpace(r.FormValue("return"))
	return in, nil
}

func isFormPost(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html") &&
		!strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
