package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"projecttracker/internal/database"
)

const (
	defaultDatabaseURL   = "file:tracker.db"
	defaultHTTPAddr      = ":8080"
	defaultJWTTTL        = "12h"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultAdminPassword = "admin"
	defaultChangeFeed    = ChangeFeedAuto
	defaultLogLevel      = "info"

	// EmbeddedDatabase as DATABASE_URL starts a local postgres under ./db_data.
	EmbeddedDatabase = database.EmbeddedDSN
)

// ChangeFeed modes.
const (
	ChangeFeedAuto     = "auto"
	ChangeFeedPostgres = "postgres"
	ChangeFeedHooks    = "hooks"
)

type Config struct {
	AppEnv            string
	DatabaseURL       string
	HTTPAddr          string
	AdminPasswordHash []byte
	JWTSecret         string
	JWTTTL            time.Duration
	RedisURL          string
	ChangeFeed        string
	LogLevel          string
	CORSOrigins       []string
	// InstanceID tags change events this process forwards to redis.
	InstanceID string
}

// Load reads .env (if present) and the environment, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:      strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", "dev"))),
		DatabaseURL: strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL)),
		HTTPAddr:    strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr)),
		JWTSecret:   strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
		ChangeFeed:  strings.ToLower(strings.TrimSpace(getEnv("CHANGEFEED", defaultChangeFeed))),
		LogLevel:    strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)),
		CORSOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		InstanceID:  strings.TrimSpace(getEnv("INSTANCE_ID", uuid.NewString())),
	}

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.AdminPasswordHash, err = adminPasswordHash(cfg.AppEnv)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// adminPasswordHash prefers ADMIN_PASSWORD_HASH and otherwise hashes ADMIN_PASSWORD.
func adminPasswordHash(appEnv string) ([]byte, error) {
	if h := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")); h != "" {
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_PASSWORD_HASH: %w", err)
		}
		return []byte(h), nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		if isProdLike(appEnv) {
			return nil, fmt.Errorf("in prod/release ADMIN_PASSWORD_HASH or ADMIN_PASSWORD must be set")
		}
		password = defaultAdminPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash ADMIN_PASSWORD: %w", err)
	}
	return h, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	switch cfg.ChangeFeed {
	case ChangeFeedAuto, ChangeFeedPostgres, ChangeFeedHooks:
	default:
		return fmt.Errorf("CHANGEFEED must be one of: auto, postgres, hooks")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.DatabaseURL == EmbeddedDatabase {
			return fmt.Errorf("in prod/release DATABASE_URL must not be %q", EmbeddedDatabase)
		}
	}
	return nil
}

// IsProd reports whether the config runs in a prod-like environment.
func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
