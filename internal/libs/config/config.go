// Package config provides application configuration management from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	APIHost  string
	APIPort  string
	LogLevel string

	// MaxActiveJobs caps the number of queued + running jobs.
	MaxActiveJobs int

	// PipelinePath points to the YAML build pipeline definition.
	PipelinePath string

	// WorkDir is the directory build steps run in.
	WorkDir string

	// BuildsDir receives build logs and JSON build records.
	BuildsDir string

	// BuildsToKeep bounds how many build records are retained;
	// zero or negative disables pruning.
	BuildsToKeep int

	// BuildTimeout bounds a whole build run.
	BuildTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		APIHost:      getEnv("API_HOST", "0.0.0.0"),
		APIPort:      getEnv("API_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		PipelinePath: getEnv("PIPELINE_PATH", "pipeline.yaml"),
		WorkDir:      getEnv("WORK_DIR", "."),
		BuildsDir:    getEnv("BUILDS_DIR", "builds"),
	}

	var err error
	cfg.MaxActiveJobs, err = getEnvInt("MAX_ACTIVE_JOBS", 4)
	if err != nil {
		return nil, err
	}
	if cfg.MaxActiveJobs < 1 {
		return nil, fmt.Errorf("MAX_ACTIVE_JOBS must be at least 1, got %d", cfg.MaxActiveJobs)
	}

	cfg.BuildsToKeep, err = getEnvInt("BUILDS_TO_KEEP", 20)
	if err != nil {
		return nil, err
	}

	timeout := getEnv("BUILD_TIMEOUT", "30m")
	cfg.BuildTimeout, err = time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid BUILD_TIMEOUT %q: %w", timeout, err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
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
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}
