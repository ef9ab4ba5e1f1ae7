package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service. All values come from
// the environment; a local .env file is honored when present.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Interval of the tournament status scheduler sweep.
	StatusUpdateInterval time.Duration

	// Cloudflare R2 snapshot storage. Optional: when AccountID is empty the
	// service runs without public bracket snapshots.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// SnapshotsEnabled reports whether the R2 snapshot store is configured.
func (c *Config) SnapshotsEnabled() bool {
	return c.R2AccountID != ""
}

// Load reads the configuration from the environment. The .env file is
// optional and its absence is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	interval := time.Minute
	if intervalStr := os.Getenv("STATUS_UPDATE_INTERVAL"); intervalStr != "" {
		interval, err = time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid STATUS_UPDATE_INTERVAL environment variable: %w", err)
		}
	}

	return &Config{
		DatabaseURL:          dbURL,
		JWTSecretKey:         jwtKey,
		ServerPort:           port,
		StatusUpdateInterval: interval,
		R2AccountID:          os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:        os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:    os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:         os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:      os.Getenv("R2_PUBLIC_BASE_URL"),
	}, nil
}
