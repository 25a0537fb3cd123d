// internal/app/bootstrap/routes.go
package bootstrap

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	adminfeature "github.com/scanmenu/admindesk/internal/app/features/admin"
	healthfeature "github.com/scanmenu/admindesk/internal/app/features/health"
	loginfeature "github.com/scanmenu/admindesk/internal/app/features/login"
	logoutfeature "github.com/scanmenu/admindesk/internal/app/features/logout"
	"github.com/scanmenu/admindesk/internal/app/system/apiclient"
	"github.com/scanmenu/admindesk/internal/app/system/auditlog"
	"github.com/scanmenu/admindesk/internal/app/system/auth"
	"github.com/scanmenu/admindesk/internal/app/system/console"
	"github.com/scanmenu/admindesk/internal/app/system/metrics"
	"github.com/scanmenu/admindesk/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// admindesk applies session middleware and mounts sign-in, sign-out,
// health, metrics and the admin console. Each signed-in admin gets a
// console built by the factory below, talking to the API with their token.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Tokenless client for sign-in and health pings.
	publicAPI, err := apiclient.New(apiclient.Options{BaseURL: appCfg.APIBaseURL, Logger: logger})
	if err != nil {
		logger.Error("api client init failed", zap.Error(err))
		return nil, err
	}

	auditLog := auditlog.New(deps.AuditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	newConsole := func(u *auth.SessionUser) (*console.Console, error) {
		client, err := apiclient.New(apiclient.Options{
			BaseURL: appCfg.APIBaseURL,
			Token:   u.Token,
			Logger:  logger.With(zap.String("admin_id", u.ID)),
		})
		if err != nil {
			return nil, err
		}
		return console.New(client, console.Options{
			ID:          u.ConsoleID,
			Debounce:    appCfg.FilterDebounce,
			PageSize:    appCfg.APIPageSize,
			SampleLimit: appCfg.AnalyticsSampleLimit,
			Logger:      logger,
			Audit:       auditLog,
		}), nil
	}

	loginLimiter := ratelimit.NewLoginLimiter()
	workersMu.Lock()
	loginLimiters = append(loginLimiters, loginLimiter)
	workersMu.Unlock()

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, publicAPI, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", metrics.Handler())

	loginHandler := loginfeature.NewHandler(publicAPI, sessionMgr, auditLog, logger)
	loginHandler.Limiter = loginLimiter
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, deps.Consoles, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	adminHandler := adminfeature.NewHandler(deps.Consoles, newConsole, sessionMgr, auditLog, logger)
	r.Mount(adminfeature.Base, adminfeature.Routes(adminHandler, sessionMgr))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, adminfeature.Base, http.StatusSeeOther)
	})
	r.Get("/forbidden", forbidden)

	return r, nil
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "forbidden",
		"message": "This console is restricted to administrators.",
	})
}
