package cmd

import (
	"fmt"
	"strconv"
	"time"
)

// Config carries the runtime configuration for both binaries. Values come
// from the environment, optionally seeded from a .env file.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	AmqpURL    string

	WorkerConcurrency int
	WorkerPrefetch    int
	TaskTimeout       time.Duration
	StalledThreshold  time.Duration
}

// PostgresDSN builds the GORM connection string.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode,
	)
}

// IntOrDefault parses an integer setting, falling back when unset or invalid.
func IntOrDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// DurationOrDefault parses a duration setting, falling back when unset or
// invalid.
func DurationOrDefault(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
