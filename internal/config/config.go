package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr           string
	DBConnString       string
	DBDialect          string
	FrontendURL        string
	Env                string
	ShutdownTimeout    time.Duration
	RedisAddr          string
	RedisPassword      string
	CacheTTL           time.Duration
	SessionSecret      string
	SessionTTL         time.Duration
	AuthRequired       bool
	RateLimitPerMinute int
	RateLimitBurst     int
}

// Load reads an optional .env file and then builds Config from the environment.
// Variables already present in the environment win over the file.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	env := envOrDefault("APP_ENV", envOrDefault("NODE_ENV", "development"))
	return Config{
		HTTPAddr:           ":" + envOrDefault("PORT", "3000"),
		DBConnString:       envOrDefault("DB_DSN", dsnFromParts()),
		DBDialect:          strings.ToLower(envOrDefault("DB_DIALECT", "postgres")),
		FrontendURL:        envOrDefault("FRONTEND_URL", "http://localhost:5173"),
		Env:                env,
		ShutdownTimeout:    envDuration("SHUTDOWN_TIMEOUT_SECONDS", time.Second, 10*time.Second),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		CacheTTL:           envDuration("CACHE_TTL_SECONDS", time.Second, 5*time.Minute),
		SessionSecret:      envOrDefault("SESSION_SECRET", "dev-session-secret"),
		SessionTTL:         envDuration("SESSION_TTL_HOURS", time.Hour, 24*time.Hour),
		AuthRequired:       envBool("AUTH_REQUIRED", false),
		RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     envInt("RATE_LIMIT_BURST", 30),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// IsDevelopment reports whether per-request debug logging is enabled.
func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	switch c.DBDialect {
	case "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported DB_DIALECT %q: only postgres is supported", c.DBDialect)
	}
	if c.DBConnString == "" {
		return errors.New("database connection string is empty")
	}
	if c.IsProduction() && (c.SessionSecret == "" || c.SessionSecret == "dev-session-secret") {
		return errors.New("SESSION_SECRET must be set in production")
	}
	if c.RateLimitPerMinute < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	return nil
}

func dsnFromParts() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(envOrDefault("DB_USER", "puntomoda"), envOrDefault("DB_PASSWORD", "puntomoda")),
		Host:     net.JoinHostPort(envOrDefault("DB_HOST", "localhost"), envOrDefault("DB_PORT", "5432")),
		Path:     "/" + envOrDefault("DB_NAME", "puntomoda"),
		RawQuery: "sslmode=" + envOrDefault("DB_SSLMODE", "disable"),
	}
	return u.String()
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, unit, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(n) * unit
		}
	}
	return def
}
