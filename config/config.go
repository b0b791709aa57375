package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all settings of the client.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	PageSize       int
	// CredentialFile overrides the default path under the user config dir.
	CredentialFile string
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file. A missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	baseURL := os.Getenv("CHALLENGEHUB_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("CHALLENGEHUB_API_URL environment variable is not set")
	}

	timeout, err := durationEnv("CHALLENGEHUB_REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pollInterval, err := durationEnv("CHALLENGEHUB_POLL_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}
	if pollInterval < time.Second {
		return nil, fmt.Errorf("CHALLENGEHUB_POLL_INTERVAL must be at least 1s, got %s", pollInterval)
	}

	pageSize := 10
	if raw := os.Getenv("CHALLENGEHUB_PAGE_SIZE"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CHALLENGEHUB_PAGE_SIZE: %w", err)
		}
		if pageSize <= 0 || pageSize > 1000 {
			return nil, fmt.Errorf("CHALLENGEHUB_PAGE_SIZE must be between 1 and 1000, got %d", pageSize)
		}
	}

	return &Config{
		APIBaseURL:     baseURL,
		RequestTimeout: timeout,
		PollInterval:   pollInterval,
		PageSize:       pageSize,
		CredentialFile: os.Getenv("CHALLENGEHUB_CREDENTIAL_FILE"),
	}, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, d)
	}
	return d, nil
}
