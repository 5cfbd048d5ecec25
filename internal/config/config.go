package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName    string
	AppEnv     string
	AppURL     string
	Port       string
	AppTagline string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret            string
	JWTExpiry            time.Duration
	TokenMagicLinkExpiry time.Duration
	SessionExpiry        time.Duration // Browser-extension session tokens

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Extension sync
	SyncAllowedOrigin string // e.g. chrome-extension://<id>
	SyncMaxBodyBytes  int64
	SyncMaxItems      int

	// Observability (optional)
	SentryDSN      string
	MetricsEnabled bool

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	// Leave S3_BUCKET empty to disable journal attachments.
	S3Region               string
	S3Bucket               string
	S3AccessKey            string
	S3SecretKey            string
	S3Endpoint             string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PresignExpiryPrivate time.Duration // Expiry for attachment links - default: 1 hour
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:    envString("APP_NAME", "MindTab"),
		AppEnv:     envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:     envRequired("APP_URL"), // Required: base URL for email links and OAuth redirects
		Port:       envString("PORT", "8090"),
		AppTagline: envString("APP_TAGLINE", "Goals, habits and notes in one tab"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/mindtab.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:            envRequired("JWT_SECRET"),
		JWTExpiry:            envDuration("JWT_EXPIRY", 168*time.Hour),               // 7 days
		TokenMagicLinkExpiry: envDuration("TOKEN_MAGIC_LINK_EXPIRY", 10*time.Minute), // 10 minutes
		SessionExpiry:        envDuration("SESSION_EXPIRY", 90*24*time.Hour),         // 90 days

		// OAuth
		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),
		GitHubClientID:     envString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: envString("GITHUB_CLIENT_SECRET", ""),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Extension sync
		SyncAllowedOrigin: envString("SYNC_ALLOWED_ORIGIN", ""),
		SyncMaxBodyBytes:  envInt64("SYNC_MAX_BODY_BYTES", 1<<20), // 1 MiB
		SyncMaxItems:      int(envInt64("SYNC_MAX_ITEMS", 5000)),

		// Observability
		SentryDSN:      envString("SENTRY_DSN", ""),
		MetricsEnabled: envBool("METRICS_ENABLED", true),

		// Storage
		S3Region:               envString("S3_REGION", "us-east-1"),
		S3Bucket:               envString("S3_BUCKET", ""),
		S3AccessKey:            envString("S3_ACCESS_KEY", ""),
		S3SecretKey:            envString("S3_SECRET_KEY", ""),
		S3Endpoint:             envString("S3_ENDPOINT", ""),                          // Optional: for non-AWS providers
		S3PresignExpiryPrivate: envDuration("S3_PRESIGN_EXPIRY_PRIVATE", 1*time.Hour), // Default: 1 hour
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows some services (like email) to use fallback modes for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if cfg.SyncAllowedOrigin == "" {
		slog.Warn("SYNC_ALLOWED_ORIGIN not set, extension sync will reject cross-origin requests")
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
// Safe to expose in ctx, templates and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:    c.AppName,
		AppEnv:     c.AppEnv,
		AppURL:     c.AppURL,
		Port:       c.Port,
		AppTagline: c.AppTagline,

		EmailFrom: c.EmailFrom,

		GoogleClientID: c.GoogleClientID,
		GitHubClientID: c.GitHubClientID,

		SyncAllowedOrigin: c.SyncAllowedOrigin,

		S3Endpoint: c.S3Endpoint, // Needed for CSP policies
	}
}
