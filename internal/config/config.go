// Package config provides centralized configuration management for the
// import console. Settings come from environment variables (optionally
// seeded from .env files) and are validated on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`

	// Port is the port to listen on
	Port int `env:"SERVER_PORT" envDefault:"8080" validate:"min=1,max=65535"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s" validate:"gte=0"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s" validate:"gte=0"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s" validate:"gte=0"`

	// ShutdownTimeout bounds graceful shutdown, including draining decodes
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s" validate:"gt=0"`

	// RequestTimeout is the middleware timeout for requests
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"60s" validate:"gt=0"`
}

// CatalogConfig describes the catalog server the batches are sent to.
type CatalogConfig struct {
	// UploadURL is the bulk endpoint receiving {"rows": [...]}
	UploadURL string `env:"CATALOG_UPLOAD_URL" envDefault:"http://localhost:8000/panel/editor/fichas/upload-json/" validate:"required,url"`

	// FormURL is a catalog page rendering the csrfmiddlewaretoken field
	FormURL string `env:"CATALOG_FORM_URL" validate:"omitempty,url"`

	// CSRFToken is a fixed token used when no form page is configured
	CSRFToken string `env:"CATALOG_CSRF_TOKEN"`

	// SessionCookie names the authenticated session cookie sent to the catalog
	SessionCookie string `env:"CATALOG_SESSION_COOKIE" envDefault:"sessionid"`
	SessionID     string `env:"CATALOG_SESSION_ID"`

	Timeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"30s" validate:"gt=0"`
}

// ImportConfig holds spreadsheet import settings.
type ImportConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" envDefault:"10485760" validate:"gt=0"`

	// MaxConcurrent is the number of spreadsheets decoded in parallel
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" envDefault:"4" validate:"gt=0"`

	// MaxWaitTime is how long a load waits for a decode slot
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" envDefault:"10s" validate:"gt=0"`

	// RequireISBN enforces the isbn rule on bulk imports. The single-record
	// form always enforces it.
	RequireISBN bool `env:"IMPORT_REQUIRE_ISBN" envDefault:"false"`

	// ReloadDelay is the pause before the page reloads after a full success
	ReloadDelay time.Duration `env:"IMPORT_RELOAD_DELAY" envDefault:"900ms" validate:"gt=0"`

	// SessionTTL expires idle browser sessions and their batches
	SessionTTL time.Duration `env:"IMPORT_SESSION_TTL" envDefault:"30m" validate:"gt=0"`

	// HistoryLimit is how many runs the in-memory history keeps
	HistoryLimit int `env:"IMPORT_HISTORY_LIMIT" envDefault:"200" validate:"gt=0"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// RequestsPerMinute is the default rate limit per IP
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" envDefault:"100" validate:"gte=0"`

	// UploadLimit is requests per minute for the import endpoints
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" envDefault:"10" validate:"gte=0"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" envDefault:"true"`

	// RequireAPIKey protects the /api routes with X-API-Key
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" envDefault:"false"`
	APIKeys       []string `env:"API_KEYS" envSeparator:","`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
}

// DatabaseConfig holds the optional history database. Without a URL the
// import history is kept in memory.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10" validate:"gt=0"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"1" validate:"gte=0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
