// Package config loads the portal's runtime settings from environment
// variables. Required keys stop the process at startup; everything else has a
// default that works for local development against the test payment
// processor and in-memory session storage.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Credential store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMySQL  = "mysql"
)

// Payment modes.
const (
	PaymentTest   = "test"
	PaymentRemote = "remote"
)

// Config holds all runtime configuration values.
type Config struct {
	Env  string // dev, test, prod
	Port string

	APIBaseURL string
	APITimeout time.Duration

	SessionSecret  string // HS256 key for the client cookie
	SessionCookie  string
	SessionIdleTTL time.Duration
	CookieSecure   bool
	GuardWait      time.Duration

	CredentialStore string // memory | redis | mysql
	StorageTTL      time.Duration
	StoragePurge    int // days; mysql rows untouched for longer are removed

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	RabbitURL     string // empty disables booking events
	BookingLogDir string

	PaymentMode string // test | remote
	PaymentURL  string
	Currency    string
	DraftTTL    time.Duration

	LogLevel    string
	JanitorSpec string // cron spec of the cleanup job
}

// Load reads configuration values from environment variables. Missing
// required values terminate the process.
func Load() Config {
	cfg := Config{
		Env:  must("APP_ENV"),
		Port: getenv("APP_PORT", "8080"),

		APIBaseURL: strings.TrimRight(must("API_BASE_URL"), "/"),
		APITimeout: envDur("API_TIMEOUT", 10*time.Second),

		SessionSecret:  must("SESSION_SECRET"),
		SessionCookie:  getenv("SESSION_COOKIE", "tp_session"),
		SessionIdleTTL: envDur("SESSION_IDLE_TTL", 30*time.Minute),
		CookieSecure:   envBool("COOKIE_SECURE", false),
		GuardWait:      envDur("GUARD_WAIT", 2*time.Second),

		CredentialStore: strings.ToLower(getenv("CREDENTIAL_STORE", StoreMemory)),
		StorageTTL:      envDur("CREDENTIAL_TTL", 30*24*time.Hour),
		StoragePurge:    envInt("CREDENTIAL_PURGE_DAYS", 30),

		DBUser: os.Getenv("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: getenv("DB_HOST", "127.0.0.1"),
		DBPort: getenv("DB_PORT", "3306"),
		DBName: os.Getenv("DB_NAME"),

		RabbitURL:     os.Getenv("RABBITMQ_URL"),
		BookingLogDir: getenv("BOOKING_LOG_DIR", "logs"),

		PaymentMode: strings.ToLower(getenv("PAYMENT_MODE", PaymentTest)),
		PaymentURL:  os.Getenv("PAYMENT_URL"),
		Currency:    strings.ToLower(getenv("CURRENCY", "usd")),
		DraftTTL:    envDur("DRAFT_TTL", 30*time.Minute),

		LogLevel:    getenv("LOG_LEVEL", "info"),
		JanitorSpec: getenv("JANITOR_SCHEDULE", "@every 1m"),
	}

	switch cfg.CredentialStore {
	case StoreMemory, StoreRedis:
	case StoreMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBName = must("DB_NAME")
	default:
		log.Fatalf("invalid CREDENTIAL_STORE %q (memory|redis|mysql)", cfg.CredentialStore)
	}
	switch cfg.PaymentMode {
	case PaymentTest:
	case PaymentRemote:
		cfg.PaymentURL = strings.TrimRight(must("PAYMENT_URL"), "/")
	default:
		log.Fatalf("invalid PAYMENT_MODE %q (test|remote)", cfg.PaymentMode)
	}
	if len(cfg.SessionSecret) < 16 {
		log.Fatalf("SESSION_SECRET must be at least 16 bytes")
	}
	return cfg
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

// envDur accepts Go durations ("90s") and bare integers as seconds.
func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return d
}
