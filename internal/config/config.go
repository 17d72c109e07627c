package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application-wide configuration loaded from environment variables.
type Config struct {
	DatabaseURL    string
	AppEnv         string
	SentryDSN      string
	GCSBucketName  string
	ProfilesDir    string
	Port           string
	AllowedOrigins []string
	DevUserID      int64
	LikeRateLimit  float64
}

// LoadConfig reads configuration from environment variables or a .env file.
// It is the single source of truth for application configuration.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists. In production, these are set directly in the environment.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("FATAL: DATABASE_URL environment variable not set")
	}

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}

	profilesDir := os.Getenv("PROFILES_DIR")
	if profilesDir == "" {
		profilesDir = "./configs/years"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	origins := splitList(os.Getenv("ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	var devUserID int64
	if raw := os.Getenv("DEV_USER_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("FATAL: DEV_USER_ID must be an integer: %w", err)
		}
		devUserID = id
	}

	likeRate := 5.0
	if raw := os.Getenv("LIKE_RATE_LIMIT"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			return nil, fmt.Errorf("FATAL: LIKE_RATE_LIMIT must be a positive number, got %q", raw)
		}
		likeRate = r
	}

	return &Config{
		DatabaseURL:    dbURL,
		AppEnv:         appEnv,
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		GCSBucketName:  os.Getenv("GCS_BUCKET_NAME"),
		ProfilesDir:    profilesDir,
		Port:           port,
		AllowedOrigins: origins,
		DevUserID:      devUserID,
		LikeRateLimit:  likeRate,
	}, nil
}

// IsDevelopment reports whether the app runs in a local development env.
func (c *Config) IsDevelopment() bool {
	return strings.HasPrefix(c.AppEnv, "development")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
