package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/bytes"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Environment string
	ServerPort  string
	SwaggerHost string

	DBDriver       string
	DatabaseDSN    string
	DBLogLevel     string
	DBWaitRetries  int
	DBWaitInterval time.Duration
	ResetDB        bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret string
	TokenTTL  time.Duration

	MediaRoot      string
	MediaURL       string
	MaxUploadBytes int64

	// AuthRateLimit caps registration and token requests per second and
	// client IP. Zero disables the limit.
	AuthRateLimit float64

	// AllowCrossTenantLabels lets a recipe reference tags and ingredients
	// owned by other users as long as they exist.
	AllowCrossTenantLabels bool

	LogLevel  string
	LogFormat string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present;
// variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local")
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),

		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DatabaseDSN:    dsn,
		DBLogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		DBWaitRetries:  getEnvInt("DB_WAIT_RETRIES", 30),
		DBWaitInterval: getEnvDuration("DB_WAIT_INTERVAL", time.Second),
		ResetDB:        getEnvBool("RESET_DB", false),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		MediaRoot:      getEnv("MEDIA_ROOT", "./media"),
		MediaURL:       getEnv("MEDIA_URL", "/media/"),
		MaxUploadBytes: getEnvBytes("MAX_UPLOAD_BYTES", 10<<20),

		AuthRateLimit: getEnvFloat("AUTH_RATE_LIMIT", 5),

		AllowCrossTenantLabels: getEnvBool("ALLOW_CROSS_TENANT_LABELS", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: os.Getenv("LOG_FORMAT"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvBytes reads a size such as 1048576, 512KiB or 10MB.
func getEnvBytes(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := bytes.Parse(v); err == nil {
			return parsed
		}
	}
	return def
}
