// Package config reads the service settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	BackendMock   = "mock"
	BackendRemote = "remote"
)

type Config struct {
	Env      string
	HTTPPort string
	GRPCPort string

	// Backend selects mock (in-process) or remote order and identity
	// providers.
	Backend        string
	CatalogBackend string
	CartStorage    string

	MongoURI    string
	MongoDBName string
	SQLitePath  string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	SessionSecret string
	JWTSecret     string
	PublicBaseURL string

	RequestTimeout  time.Duration
	OrderTimeout    time.Duration
	SessionIdleTTL  time.Duration
	CartTTL         time.Duration
	ShutdownTimeout time.Duration
}

// LoadDotEnv copies a .env file in the working directory into the process
// environment without overriding variables that are already set. A missing
// file is not an error. Call it before Environment and Load.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Environment is APP_ENV, defaulting to development. The logger is built
// from it before the rest of the config is read.
func Environment() string {
	return getEnv("APP_ENV", "development")
}

// Load reads the process environment. Malformed numbers and durations fall
// back to their defaults with a warning.
func Load(logger *zap.Logger) *Config {
	p := parser{logger: logger}
	return &Config{
		Env:      Environment(),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		GRPCPort: getEnv("GRPC_PORT", "50051"),

		Backend:        getEnv("BACKEND", BackendMock),
		CatalogBackend: getEnv("CATALOG_BACKEND", "memory"),
		CartStorage:    getEnv("CART_STORAGE", "memory"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "storefront"),
		SQLitePath:  getEnv("SQLITE_PATH", "storefront.db"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     p.int("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "storefront"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "payment-slips"),
		MinIOUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",

		SessionSecret: getEnv("SESSION_SECRET", "dev-session-secret-change-me"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-jwt-secret-change-me"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		RequestTimeout:  p.duration("REQUEST_TIMEOUT", 15*time.Second),
		OrderTimeout:    p.duration("ORDER_TIMEOUT", 10*time.Second),
		SessionIdleTTL:  p.duration("SESSION_IDLE_TTL", 30*time.Minute),
		CartTTL:         p.duration("CART_TTL", 30*24*time.Hour),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type parser struct {
	logger *zap.Logger
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		p.logger.Warn("invalid duration, using default",
			zap.String("key", key), zap.String("value", raw), zap.Duration("default", def))
		return def
	}
	return d
}

func (p parser) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.logger.Warn("invalid number, using default",
			zap.String("key", key), zap.String("value", raw), zap.Int("default", def))
		return def
	}
	return n
}
