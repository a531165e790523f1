package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	// Database (sqlite by default; postgres/mysql selected via DB_TYPE)
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	// Sessions / privileges
	JWTSecret       string
	SessionDuration time.Duration
	AdminUsername   string
	AdminPassword   string
	TestUsername    string

	// Uploads
	UploadMaxSize int64
	UploadsPath   string

	// Avatar generation (external image API)
	AvatarBaseURL string

	// Reviewer notifications (Amazon SES)
	AWSRegion     string
	SESFromEmail  string
	SESFromName   string
	ReviewerEmail string
	AppBaseURL    string

	// OAuth sign-in
	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabasePath:   getEnv("DB_PATH", "./vacationtrail.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		JWTSecret:       getEnv("JWT_SECRET", "dev-only-insecure-secret"),
		SessionDuration: getDurationEnv("SESSION_DURATION", 24*time.Hour),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		TestUsername:    getEnv("TEST_USERNAME", "teste"),

		UploadMaxSize: getInt64Env("UPLOAD_MAX_SIZE", 5*1024*1024),
		UploadsPath:   getEnv("UPLOADS_PATH", "./uploads"),

		AvatarBaseURL: getEnv("AVATAR_BASE_URL", "https://ui-avatars.com/api/"),

		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:  getEnv("SES_FROM_EMAIL", ""),
		SESFromName:   getEnv("SES_FROM_NAME", "Vacation Trail"),
		ReviewerEmail: getEnv("REVIEWER_EMAIL", ""),
		AppBaseURL:    getEnv("APP_BASE_URL", "http://localhost:8080"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s, using default", key)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid %s, using default", key)
	}
	return defaultValue
}
