// Package config loads runtime configuration from the environment,
// optionally seeded from a .env file, and opens database connections
// from it.
package config

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const (
	defaultDBHost     = "localhost"
	defaultDBPort     = 5432
	defaultDBUser     = "library"
	defaultDBPassword = "library"
	defaultDBName     = "library"
	defaultDBSSLMode  = "disable"
	defaultDBMaxConns = 10

	defaultHTTPAddr       = ":4000"
	defaultRequestTimeout = 10 * time.Second
	defaultRateLimitRPS   = 25
	defaultRateLimitBurst = 50
)

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// HTTPConfig holds the HTTP server settings.
type HTTPConfig struct {
	Addr             string
	RequestTimeout   time.Duration
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// Config is the full runtime configuration.
type Config struct {
	DB       DBConfig
	HTTP     HTTPConfig
	LogLevel slog.Level
}

// Load reads configuration from the environment. When a .env file
// exists in the working directory it is loaded first; explicit
// environment variables win over file entries.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err = godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("loading .env file failed: %w", err)
		}
	}

	cfg := Config{
		DB: DBConfig{
			Host:     envString("DB_HOST", defaultDBHost),
			Port:     envInt("DB_PORT", defaultDBPort),
			User:     envString("DB_USER", defaultDBUser),
			Password: envString("DB_PASSWORD", defaultDBPassword),
			Name:     envString("DB_NAME", defaultDBName),
			SSLMode:  envString("DB_SSLMODE", defaultDBSSLMode),
			MaxConns: int32(envInt("DB_MAX_CONNS", defaultDBMaxConns)),
		},
		HTTP: HTTPConfig{
			Addr:             envString("HTTP_ADDR", defaultHTTPAddr),
			RequestTimeout:   envDuration("HTTP_REQUEST_TIMEOUT", defaultRequestTimeout),
			RateLimitEnabled: envBool("RATE_LIMIT_ENABLED", true),
			RateLimitRPS:     envFloat("RATE_LIMIT_RPS", defaultRateLimitRPS),
			RateLimitBurst:   envInt("RATE_LIMIT_BURST", defaultRateLimitBurst),
		},
		LogLevel: parseLogLevel(envString("LOG_LEVEL", "info")),
	}

	return cfg, nil
}

// DSN renders the settings as a key/value Postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// NewPGXPool opens a pgx connection pool with the configured limits
// and verifies connectivity with a ping.
func (c DBConfig) NewPGXPool(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing pool config failed: %w", err)
	}

	poolConfig.MaxConns = c.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool failed: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("pinging database failed: %w", err)
	}

	return pool, nil
}

// OpenSQLDB opens a database/sql handle over the pq driver and
// verifies connectivity with a ping.
func (c DBConfig) OpenSQLDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database failed: %w", err)
	}

	db.SetMaxOpenConns(int(c.MaxConns))

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("pinging database failed: %w", err)
	}

	return db, nil
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func envFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}

	return value
}

func envBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func parseLogLevel(value string) slog.Level {
	switch value {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
