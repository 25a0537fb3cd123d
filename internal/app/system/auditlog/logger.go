// internal/app/system/auditlog/logger.go
package auditlog

// Terminology: Identifiers
//   - ActorID: the external API's _id of the signed-in admin
//   - TargetID: the external API's _id of the business or user acted on

import (
	"context"
	"net/http"
	"strings"

	"github.com/scanmenu/admindesk/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-in, sign-out and session expiry.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for console actions (approve, archive, deactivate, ...).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case "db"
// destinations are skipped.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// Actor is who performed an action and from where.
type Actor struct {
	ID        string
	Email     string
	IP        string
	UserAgent string
	RequestID string
}

// ActorFromRequest fills the request-derived fields of an Actor.
func ActorFromRequest(r *http.Request, id, email string) Actor {
	return Actor{
		ID:        id,
		Email:     email,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		RequestID: r.Header.Get("X-Request-ID"),
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.TargetID != "" {
		fields = append(fields,
			zap.String("target_type", event.TargetType),
			zap.String("target_id", event.TargetID))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// Activity returns the most recent events performed by actorID. A nil
// logger or one without a store returns an empty list.
func (l *Logger) Activity(ctx context.Context, actorID string, limit int64) ([]audit.Event, error) {
	if l == nil || l.store == nil {
		return []audit.Event{}, nil
	}
	return l.store.GetByActor(ctx, actorID, limit)
}

func (l *Logger) authEvent(ctx context.Context, a Actor, eventType string, success bool, reason string, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		ActorID:       a.ID,
		ActorEmail:    a.Email,
		IP:            a.IP,
		UserAgent:     a.UserAgent,
		RequestID:     a.RequestID,
		Success:       success,
		FailureReason: reason,
		Details:       details,
	})
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, a Actor, role string) {
	l.authEvent(ctx, a, audit.EventLoginSuccess, true, "", map[string]string{"role": role})
}

// LoginFailed logs a sign-in the API rejected.
func (l *Logger) LoginFailed(ctx context.Context, a Actor, reason string) {
	l.authEvent(ctx, a, audit.EventLoginFailed, false, reason, nil)
}

// LoginForbidden logs a sign-in with valid credentials but no admin role.
func (l *Logger) LoginForbidden(ctx context.Context, a Actor, role string) {
	l.authEvent(ctx, a, audit.EventLoginForbidden, false, "not an admin", map[string]string{"role": role})
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, a Actor) {
	l.authEvent(ctx, a, audit.EventLogout, true, "", nil)
}

// SessionExpired logs that the API stopped accepting the admin's token.
func (l *Logger) SessionExpired(ctx context.Context, a Actor) {
	l.authEvent(ctx, a, audit.EventSessionExpired, true, "", nil)
}

// --- Admin Events ---

// AdminAction logs a console action against a business or user. A non-nil
// err marks the event failed with err's message.
func (l *Logger) AdminAction(ctx context.Context, a Actor, eventType, targetType, targetID string, err error, details map[string]string) {
	ev := audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  eventType,
		ActorID:    a.ID,
		ActorEmail: a.Email,
		TargetType: targetType,
		TargetID:   targetID,
		IP:         a.IP,
		UserAgent:  a.UserAgent,
		RequestID:  a.RequestID,
		Success:    err == nil,
		Details:    details,
	}
	if err != nil {
		ev.FailureReason = err.Error()
	}
	l.Log(ctx, ev)
}
