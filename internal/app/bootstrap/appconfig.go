// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries what is specific to the admin console: where the
// product API lives, how the console pages and debounces, where the audit
// trail is stored and how admin sessions are signed.
type AppConfig struct {
	// Admin REST API
	APIBaseURL string // API root, e.g. https://api.example.com/api

	// Console behaviour
	APIPageSize          int           // default table page size (clamped to 1..100)
	FilterDebounce       time.Duration // quiet period before a filter change is fetched
	AnalyticsSampleLimit int           // max businesses and users loaded for charts
	ConsoleIdleTTL       time.Duration // idle consoles older than this are closed
	ConsoleSweepInterval time.Duration // how often idle consoles are swept

	// MongoDB connection configuration (audit trail)
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: admindesk-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime; the API token's exp still applies

	// Audit logging
	AuditLogAuth  string // "all", "db", "log" or "off"
	AuditLogAdmin string // "all", "db", "log" or "off"
}
