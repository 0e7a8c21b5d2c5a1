// Package config holds runtime settings read from the environment and the
// fixed constants of the complaint workflow.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the runtime configuration of the API server and the admin CLI.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PublicBaseURL string
	S3AccessKey     string
	S3SecretKey     string

	TelegramBotToken       string
	TelegramOperatorChatID int64

	JWTSecret        string
	OperatorTokenTTL time.Duration

	MaxUploadBytes int64

	// ReclassifySchedule is a cron spec for the pending-verification sweep.
	// The sweep is off unless it is set.
	ReclassifySchedule string
}

// Load reads the configuration from environment variables. Call
// godotenv.Load beforehand to pick up a local .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Env:              getEnv("APP_ENV", "production"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:      os.Getenv("DATABASE_DSN"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		S3Bucket:         getEnv("S3_BUCKET", AttachmentBucket),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3PublicBaseURL:  os.Getenv("S3_PUBLIC_BASE_URL"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:      os.Getenv("S3_SECRET_ACCESS_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		OperatorTokenTTL: 72 * time.Hour,
		MaxUploadBytes:   10 << 20,

		ReclassifySchedule: os.Getenv("RECLASSIFY_SCHEDULE"),
	}

	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "user"),
			getEnv("DB_PASSWORD", "password"),
			getEnv("DB_NAME", "wardcomplaints"),
			getEnv("DB_PORT", "5432"),
		)
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if v := os.Getenv("TELEGRAM_OPERATOR_CHAT_ID"); v != "" {
		if cfg.TelegramOperatorChatID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_OPERATOR_CHAT_ID: %w", err)
		}
	}
	mb, err := getInt("MAX_UPLOAD_MB", 10)
	if err != nil {
		return nil, err
	}
	if mb <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: must be positive, got %d", mb)
	}
	cfg.MaxUploadBytes = int64(mb) << 20

	if v := os.Getenv("OPERATOR_TOKEN_TTL"); v != "" {
		if cfg.OperatorTokenTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid OPERATOR_TOKEN_TTL: %w", err)
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the development logger and gin debug mode
// should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
