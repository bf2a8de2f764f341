package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPHost        string
	HTTPPort        string
	GRPCHost        string
	GRPCPort        string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	BackendURL     string
	BackendTimeout time.Duration

	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Mongo    MongoConfig

	KafkaBrokers []string

	Gateway GatewayConfig

	BalanceMaxAge time.Duration
}

type StorageConfig struct {
	Backend    string // memory|file|sqlite|postgres|redis|mongo
	Dir        string
	Passphrase string
	KeyFile    string // used when Passphrase is empty
	SQLitePath string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type MongoConfig struct {
	URI    string
	DBName string
}

type GatewayConfig struct {
	KeyID         string
	Mode          string // bridge|sandbox
	SandboxSecret string
	DisplayName   string
	ThemeColor    string
	Image         string
}

var ErrInvalidConfig = errors.New("invalid config")

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(getEnv("ENV_FILE", ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load env file", "error", err)
	}

	cfg := Config{
		AppEnv:          getEnv("APP_ENV", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPHost:        getEnv("HTTP_HOST", "127.0.0.1"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		GRPCHost:        getEnv("GRPC_HOST", "127.0.0.1"),
		GRPCPort:        getEnv("GRPC_PORT", "50052"),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:3000"),
		BackendTimeout:  getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),
		Storage: StorageConfig{
			Backend:    getEnv("STORAGE_BACKEND", "file"),
			Dir:        getEnv("STORAGE_DIR", ".yofoo"),
			Passphrase: getEnv("STORAGE_PASSPHRASE", ""),
			KeyFile:    getEnv("STORAGE_KEY_FILE", ""),
			SQLitePath: getEnv("SQLITE_PATH", "yofoo.db"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "yofoo"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Mongo: MongoConfig{
			URI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName: getEnv("MONGO_DB_NAME", "yofoo"),
		},
		KafkaBrokers: getEnvList("KAFKA_BROKERS"),
		Gateway: GatewayConfig{
			KeyID:         getEnv("GATEWAY_KEY_ID", ""),
			Mode:          getEnv("GATEWAY_MODE", "bridge"),
			SandboxSecret: getEnv("GATEWAY_SANDBOX_SECRET", ""),
			DisplayName:   getEnv("GATEWAY_DISPLAY_NAME", "Yo Foo"),
			ThemeColor:    getEnv("GATEWAY_THEME_COLOR", "#F97316"),
			Image:         getEnv("GATEWAY_IMAGE", ""),
		},
		BalanceMaxAge: getEnvDuration("BALANCE_MAX_AGE", 30*time.Second),
	}
	if cfg.Storage.KeyFile == "" {
		cfg.Storage.KeyFile = filepath.Join(cfg.Storage.Dir, "storage.key")
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	// remote calls must fail within a bounded time
	if c.BackendTimeout < 10*time.Second || c.BackendTimeout > 30*time.Second {
		return fmt.Errorf("%w: BACKEND_TIMEOUT must be between 10s and 30s, got %s", ErrInvalidConfig, c.BackendTimeout)
	}
	switch c.Storage.Backend {
	case "memory", "file", "sqlite", "postgres", "redis", "mongo":
	default:
		return fmt.Errorf("%w: unknown STORAGE_BACKEND %q", ErrInvalidConfig, c.Storage.Backend)
	}
	switch c.Gateway.Mode {
	case "bridge":
	case "sandbox":
		if c.Gateway.SandboxSecret == "" {
			return fmt.Errorf("%w: GATEWAY_SANDBOX_SECRET is required in sandbox mode", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown GATEWAY_MODE %q", ErrInvalidConfig, c.Gateway.Mode)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("%w: BACKEND_URL is empty", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
