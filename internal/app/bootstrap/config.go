// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/scanmenu/admindesk/internal/app/system/apiclient"
	"github.com/scanmenu/admindesk/internal/app/system/auth"
	"github.com/scanmenu/admindesk/internal/app/system/paging"
	"go.uber.org/zap"
)

// devSessionKey is the placeholder key; it is refused in production.
const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for admindesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, mongo_uri, session_name, etc.
//   - Environment variables: ADMINDESK_API_BASE_URL, ADMINDESK_MONGO_URI, etc.
//   - Command-line flags: --api_base_url, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "api_base_url", Default: "http://localhost:5000/api", Desc: "Admin REST API root URL"},
	{Name: "api_page_size", Default: paging.PageSize, Desc: "Default table page size (max 100)"},
	{Name: "filter_debounce", Default: "300ms", Desc: "Quiet period before a filter change is fetched"},
	{Name: "analytics_sample_limit", Default: 1000, Desc: "Max businesses and users loaded for charts"},
	{Name: "console_idle_ttl", Default: "30m", Desc: "Close consoles unused for this long"},
	{Name: "console_sweep_interval", Default: "1m", Desc: "How often idle consoles are swept"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "admindesk", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size (default: 50)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: auth.DefaultSessionName, Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session cookie lifetime"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ADMINDESK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ADMINDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		APIBaseURL:           appValues.String("api_base_url"),
		APIPageSize:          paging.ClampLimit(appValues.Int("api_page_size")),
		FilterDebounce:       appValues.Duration("filter_debounce", 300*time.Millisecond),
		AnalyticsSampleLimit: appValues.Int("analytics_sample_limit"),
		ConsoleIdleTTL:       appValues.Duration("console_idle_ttl", 30*time.Minute),
		ConsoleSweepInterval: appValues.Duration("console_sweep_interval", time.Minute),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	// An unset key in development gets a random one; sessions then do not
	// survive a restart.
	if appCfg.SessionKey == "" && coreCfg.Env != "prod" {
		appCfg.SessionKey = auth.GenerateKey()
		logger.Warn("session_key not set; generated a random development key")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// admindesk checks the MongoDB URI, the API base URL and, in production,
// that the session key was changed from the development placeholder.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if _, err := apiclient.ParseBaseURL(appCfg.APIBaseURL); err != nil {
		logger.Error("invalid API base URL", zap.Error(err))
		return err
	}
	return validateAppConfig(coreCfg.Env, appCfg)
}

// validateAppConfig holds the checks that need no logger or core config
// beyond the environment name.
func validateAppConfig(env string, appCfg AppConfig) error {
	if env == "prod" && (appCfg.SessionKey == "" || appCfg.SessionKey == devSessionKey) {
		return fmt.Errorf("session_key must be set to a strong secret in production")
	}
	if appCfg.FilterDebounce < 0 {
		return fmt.Errorf("filter_debounce must not be negative")
	}
	if appCfg.AnalyticsSampleLimit < 0 {
		return fmt.Errorf("analytics_sample_limit must not be negative")
	}
	if appCfg.ConsoleIdleTTL <= 0 || appCfg.ConsoleSweepInterval <= 0 {
		return fmt.Errorf("console_idle_ttl and console_sweep_interval must be positive")
	}
	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch v {
		case "", "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}
	return nil
}
