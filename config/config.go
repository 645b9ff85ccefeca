package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment
	LogLevel    string

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBPath        string
	MigrationsDir string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Asset storage
	StorageDriver  string
	MediaRoot      string
	MediaURL       string
	S3BucketName   string
	AWSRegion      string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	// RecipeRateLimit is the number of recipes a user may create per hour, 0 disables it.
	RecipeRateLimit int
	PDFFontPath     string
}

// LoadConfig builds a Config from the environment. Docker secrets found in
// SECRETS_DIR take precedence over plain environment variables.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development || env == Test {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("failed to load .env file")
		}
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getEnvInt("RECIPE_RATE_LIMIT", 30)
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		ServerPort:  getEnv("SERVER_PORT", "8080"),
		ServerHost:  getEnv("SERVER_HOST", "0.0.0.0"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "foodgram"),
		DBPassword:    secretOrEnv("db_password", "DB_PASSWORD", ""),
		DBName:        getEnv("DB_NAME", "foodgram"),
		DBSSLMode:     getEnv("DB_SSL_MODE", "disable"),
		DBPath:        getEnv("DB_PATH", "foodgram.db"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: secretOrEnv("redis_password", "REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		RedisURL:      secretOrEnv("redis_url", "REDIS_URL", ""),

		JWTSecret: secretOrEnv("jwt_secret", "JWT_SECRET", ""),
		TokenTTL:  ttl,

		StorageDriver:  getEnv("STORAGE_DRIVER", "local"),
		MediaRoot:      getEnv("MEDIA_ROOT", "media"),
		MediaURL:       getEnv("MEDIA_URL", "/media"),
		S3BucketName:   getEnv("S3_BUCKET_NAME", ""),
		AWSRegion:      getEnv("AWS_REGION", ""),
		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: secretOrEnv("minio_secret_key", "MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "foodgram"),
		MinIOUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",

		RecipeRateLimit: rateLimit,
		PDFFontPath:     getEnv("PDF_FONT_PATH", ""),
	}

	if cfg.JWTSecret == "" && env != Production {
		cfg.JWTSecret = "dev-secret-change-me"
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// HasRedis reports whether a Redis connection is configured.
func (c *Config) HasRedis() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// PostgresDSN returns the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func secretOrEnv(secret, key, fallback string) string {
	if value := readSecret(secret); value != "" {
		return value
	}
	return getEnv(key, fallback)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
