package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MinSecretLength is the minimum accepted signing-secret length. Anything
// shorter is refused in production and replaced by an ephemeral secret
// elsewhere.
const MinSecretLength = 32

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Album    AlbumConfig
	Limiter  LimiterConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines parameters for the admin session token family.
type AuthConfig struct {
	JWTSecret             string
	EphemeralSecret       bool
	AccessTokenTTLMinutes int
	RefreshTokenTTLHours  int
	PBKDF2Iterations      int
	ResetTokenTTLMinutes  int
}

// AlbumConfig defines parameters for the album-access token family.
type AlbumConfig struct {
	JWTSecret       string
	EphemeralSecret bool
	SessionTTLHours int
}

// LimiterConfig bounds password attempts per client.
type LimiterConfig struct {
	MaxAttempts   int
	WindowSeconds int
}

// Load reads configuration from environment variables, applying defaults
// where possible. Signing secrets fail closed in production: a missing or
// short AUTH_JWT_SECRET aborts startup. Other environments get a random
// ephemeral secret, which invalidates all outstanding sessions on restart.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "development")

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	authSecret, authEphemeral, err := resolveSecret("AUTH_JWT_SECRET", env)
	if err != nil {
		return nil, err
	}

	// The album family may share the admin secret; a dedicated
	// ALBUM_JWT_SECRET overrides it.
	albumSecret := os.Getenv("ALBUM_JWT_SECRET")
	albumEphemeral := authEphemeral
	if albumSecret == "" {
		albumSecret = authSecret
	} else if len(albumSecret) < MinSecretLength {
		if env == "production" {
			return nil, fmt.Errorf("ALBUM_JWT_SECRET must be at least %d characters", MinSecretLength)
		}
		albumSecret = authSecret
	} else {
		albumEphemeral = false
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "gallery-session-service"),
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             authSecret,
			EphemeralSecret:       authEphemeral,
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			RefreshTokenTTLHours:  getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_HOURS", 168),
			PBKDF2Iterations:      getEnvAsInt("AUTH_PBKDF2_ITERATIONS", 100_000),
			ResetTokenTTLMinutes:  getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
		},
		Album: AlbumConfig{
			JWTSecret:       albumSecret,
			EphemeralSecret: albumEphemeral,
			SessionTTLHours: getEnvAsInt("ALBUM_SESSION_TTL_HOURS", 24),
		},
		Limiter: LimiterConfig{
			MaxAttempts:   getEnvAsInt("LIMITER_MAX_ATTEMPTS", 10),
			WindowSeconds: getEnvAsInt("LIMITER_WINDOW_SECONDS", 300),
		},
	}

	return cfg, nil
}

// resolveSecret applies the fail-closed secret policy for one token family.
func resolveSecret(key, env string) (string, bool, error) {
	secret := os.Getenv(key)
	if len(secret) >= MinSecretLength {
		return secret, false, nil
	}
	if env == "production" {
		if secret == "" {
			return "", false, fmt.Errorf("%s is required in production", key)
		}
		return "", false, fmt.Errorf("%s must be at least %d characters", key, MinSecretLength)
	}

	buf := make([]byte, MinSecretLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", false, fmt.Errorf("generate ephemeral %s: %w", key, err)
	}
	return hex.EncodeToString(buf), true, nil
}

// IsProduction reports whether the service runs with production hardening.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the access-token lifetime.
func (c AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh-token lifetime.
func (c AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLHours) * time.Hour
}

// ResetTokenTTL returns the password-reset token lifetime.
func (c AuthConfig) ResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenTTLMinutes) * time.Minute
}

// SessionTTL returns the album grant lifetime.
func (c AlbumConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Window returns the attempt-limiter window.
func (c LimiterConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
