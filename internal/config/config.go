package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Ledger   LedgerConfig
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
	DSN                    string
	ApplicationName        string
	MaxConns               int32
	MinConns               int32
	RunMigrations          bool
	ConnMaxIdleSec         int32
	ConnMaxLifeSec         int32
	StatementTimeoutMillis int
	ConnectAttempts        int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	TimeoutMillis int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Service     string
	Development bool
}

// AuthConfig defines identity token parameters.
type AuthConfig struct {
	JWTSecret             string
	Issuer                string
	AccessTokenTTLMinutes int
}

// LedgerConfig tunes the transaction core.
type LedgerConfig struct {
	TxTimeoutMillis  int
	PayMaxAttempts   int
	LockTTLMillis    int
	BestClientsLimit int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	if env := os.Getenv("APP_ENV"); env != "" {
		_ = godotenv.Load(".env." + env)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	appName := getEnv("APP_NAME", "marketplace-ledger")
	appEnv := getEnv("APP_ENV", "development")

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  appName,
			Env:                   appEnv,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:                    os.Getenv("POSTGRES_DSN"),
			ApplicationName:        appName,
			MaxConns:               maxConns,
			MinConns:               minConns,
			RunMigrations:          runMigrations,
			ConnMaxIdleSec:         connMaxIdle,
			ConnMaxLifeSec:         connMaxLife,
			StatementTimeoutMillis: getEnvAsInt("POSTGRES_STATEMENT_TIMEOUT_MS", 10000),
			ConnectAttempts:        getEnvAsInt("POSTGRES_CONNECT_ATTEMPTS", 5),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:      os.Getenv("REDIS_PASSWORD"),
			DB:            redisDB,
			TimeoutMillis: getEnvAsInt("REDIS_TIMEOUT_MS", 500),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Service:     appName,
			Development: appEnv == "development",
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			Issuer:                getEnv("AUTH_ISSUER", "marketplace-ledger"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Ledger: LedgerConfig{
			TxTimeoutMillis:  getEnvAsInt("LEDGER_TX_TIMEOUT_MS", 5000),
			PayMaxAttempts:   getEnvAsInt("LEDGER_PAY_MAX_ATTEMPTS", 3),
			LockTTLMillis:    getEnvAsInt("LEDGER_LOCK_TTL_MS", 10000),
			BestClientsLimit: getEnvAsInt("LEDGER_BEST_CLIENTS_DEFAULT_LIMIT", 2),
		},
	}

	if cfg.Ledger.PayMaxAttempts < 1 {
		return nil, fmt.Errorf("invalid LEDGER_PAY_MAX_ATTEMPTS: %d", cfg.Ledger.PayMaxAttempts)
	}

	return cfg, nil
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

// TxTimeout bounds a single ledger transaction.
func (l LedgerConfig) TxTimeout() time.Duration {
	if l.TxTimeoutMillis <= 0 {
		return 5 * time.Second
	}
	return time.Duration(l.TxTimeoutMillis) * time.Millisecond
}

// LockTTL is how long a payment lock survives a crashed holder.
func (l LedgerConfig) LockTTL() time.Duration {
	if l.LockTTLMillis <= 0 {
		return 10 * time.Second
	}
	return time.Duration(l.LockTTLMillis) * time.Millisecond
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
