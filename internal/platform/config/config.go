// Package config loads process configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"blog_backend/internal/platform/db"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Config is the fully resolved application configuration.
type Config struct {
	Port            string
	GinMode         string
	BaseURL         string
	FrontendURL     string
	ShutdownTimeout time.Duration

	JWTSecret    string
	JWTExpiresIn time.Duration

	StoreDriver   string
	DB            db.Config
	RunMigrations bool
	SQLitePath    string
	MongoURI      string
	MongoDB       string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	Mail Mail

	RateLimitMax    int
	RateLimitWindow time.Duration

	LogLevel  string
	LogFormat string
}

// Mail holds SMTP settings. An empty Host means mail is only logged.
type Mail struct {
	Host        string
	Port        int
	Username    string
	Password    string
	CompanyName string
	Timeout     time.Duration
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	expiresIn, err := ParseDuration(getEnv("JWT_EXPIRES_IN", "7d"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}
	window, err := ParseDuration(getEnv("RATE_LIMIT_WINDOW", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	mailTimeout, err := ParseDuration(getEnv("MAIL_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAIL_TIMEOUT: %w", err)
	}
	shutdown, err := ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:            getEnv("PORT", "5000"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		BaseURL:         strings.TrimRight(getEnv("BASE_URL", "http://localhost"), "/"),
		FrontendURL:     strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		ShutdownTimeout: shutdown,

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiresIn: expiresIn,

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DB:            db.LoadConfigFromEnv(),
		RunMigrations: getEnvAsBool("RUN_MIGRATIONS", true),
		SQLitePath:    getEnv("SQLITE_PATH", "blog.db"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "blog"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		Mail: Mail{
			Host:        os.Getenv("SMTP_HOST"),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Username:    os.Getenv("EMAIL_USER"),
			Password:    os.Getenv("EMAIL_PASS"),
			CompanyName: getEnv("COMPANY_NAME", "Your Company"),
			Timeout:     mailTimeout,
		},

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: window,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot run without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("rate limit settings must be positive")
	}
	return nil
}

// PublicBaseURL is the externally reachable API origin used in email links.
// PORT is appended when BASE_URL does not carry a port of its own.
func (c *Config) PublicBaseURL() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || u.Port() != "" || c.Port == "" {
		return c.BaseURL
	}
	u.Host = u.Host + ":" + c.Port
	return strings.TrimRight(u.String(), "/")
}

// JSONLogs reports whether LOG_FORMAT selects the JSON handler.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, "json")
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

// ParseDuration accepts time.ParseDuration syntax plus a whole-day suffix such as "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", s, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring non-numeric environment value", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("ignoring non-boolean environment value", "key", key, "value", v)
		return fallback
	}
	return b
}
