package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "admindesk-session"

	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userName     = "user_name"
	userEmail    = "user_email"
	userRole     = "user_role"
	apiTokenKey  = "api_token"
	tokenExpKey  = "token_exp"
	consoleIDKey = "console_id"
)

// Admin roles allowed into the console.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// IsAdminRole reports whether role may use the console.
func IsAdminRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we cache in the session & inject into r.Context().
// Token is the admin's bearer token for the external API; it is kept in
// the encrypted cookie and never rendered.
type SessionUser struct {
	ID          string
	Name        string
	Email       string
	Role        string
	Token       string
	TokenExpiry time.Time // zero when the token carries no exp claim
	ConsoleID   string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into the request context, bypassing the cookie.
// Handler tests use it.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
	now   func() time.Time
}

// NewSessionManager creates the cookie session store.
//
// The cookie is signed with sessionKey and encrypted with a key derived
// from it, because it carries the admin's API token. In production
// (secure=true), cookies are Secure + SameSite=None; in local dev over
// http://localhost use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	blockKey := sha256.Sum256([]byte("admindesk/session-encryption/" + sessionKey))
	store := sessions.NewCookieStore([]byte(sessionKey), blockKey[:])
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	store.MaxAge(opts.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger, now: time.Now}, nil
}

// GenerateKey returns a random hex session key for development setups
// that did not configure one.
func GenerateKey() string {
	return hex.EncodeToString(securecookie.GenerateRandomKey(32))
}

// Name returns the cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// GetSession returns the session for r. On a decode error (rotated key,
// tampered cookie) a fresh session is returned together with the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// SignIn stores u in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			sm.log.Warn("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			sm.log.Error("session store error during sign-in, using fresh session", zap.Error(err))
		}
	}

	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userEmail] = u.Email
	sess.Values[userRole] = u.Role
	sess.Values[apiTokenKey] = u.Token
	sess.Values[consoleIDKey] = u.ConsoleID
	if !u.TokenExpiry.IsZero() {
		sess.Values[tokenExpKey] = u.TokenExpiry.Unix()
	} else {
		delete(sess.Values, tokenExpKey)
	}
	return sess.Save(r, w)
}

// SetConsoleID updates the console id kept in the session.
func (sm *SessionManager) SetConsoleID(w http.ResponseWriter, r *http.Request, id string) error {
	sess, _ := sm.GetSession(r)
	sess.Values[consoleIDKey] = id
	return sess.Save(r, w)
}

// Clear deletes the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.GetSession(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if they are signed in and
// their API token has not passed its exp claim.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:        getString(sess, userIDKey),
				Name:      getString(sess, userName),
				Email:     getString(sess, userEmail),
				Role:      getString(sess, userRole),
				Token:     getString(sess, apiTokenKey),
				ConsoleID: getString(sess, consoleIDKey),
			}
			if exp, ok := sess.Values[tokenExpKey].(int64); ok {
				u.TokenExpiry = time.Unix(exp, 0)
			}
			if u.Token != "" && (u.TokenExpiry.IsZero() || sm.now().Before(u.TokenExpiry)) {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is an admin in context (set by
// LoadSessionUser). If not:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 JSON {"error": "...", "redirect": "/login?..."}
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := CurrentUser(r); ok && IsAdminRole(u.Role) {
			next.ServeHTTP(w, r)
			return
		}
		Unauthorized(w, r, "unauthorized")
	})
}

// RequireRole ensures there is a user with one of the allowed roles.
// Signed-out callers get 401 semantics, wrong roles 403.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				Unauthorized(w, r, "unauthorized")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginURL returns the sign-in path that returns to the current request.
func LoginURL(r *http.Request) string {
	return "/login?return=" + url.QueryEscape(currentURI(r))
}

// Unauthorized sends the caller to sign in: HX-Redirect for HTMX, a 303
// for browsers, and 401 JSON carrying the redirect for API callers.
func Unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	dest := LoginURL(r)

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error":    reason,
		"redirect": dest,
	})
}

// TokenExpiry reads the exp claim of a JWT without verifying it. The API
// verifies its own tokens; the console only needs to know when to stop
// using one.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	// Very light heuristic: treat it as HTML if it's HTMX or Accepts text/html.
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	// Preserve path + query as a return param.
	u := *r.URL
	return u.RequestURI()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
