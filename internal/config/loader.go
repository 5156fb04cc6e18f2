// Package config resolves runtime configuration from an optional YAML file
// overridden by environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime settings of the assistant process.
type Config struct {
	// CatalogURL is the endpoint serving the session catalog document.
	CatalogURL string `yaml:"catalog_url"`
	// CatalogTimeout bounds a single catalog fetch.
	CatalogTimeout time.Duration `yaml:"catalog_timeout"`
	// DataDir holds the sqlite database and the storage probe file.
	DataDir string `yaml:"data_dir"`
	// UserID scopes bookings, reminders and preferences.
	UserID string `yaml:"user_id"`
	// RefreshSchedule is a cron expression for periodic catalog refreshes.
	// Empty disables the refresh job.
	RefreshSchedule string `yaml:"refresh_schedule"`
	// BlockOnConflict rejects bookings that overlap an existing one instead
	// of warning.
	BlockOnConflict bool `yaml:"block_on_conflict"`
	// SecondaryReminderMinutes are extra reminder offsets armed next to the
	// user's default offset.
	SecondaryReminderMinutes []int `yaml:"secondary_reminder_minutes"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		CatalogTimeout:           10 * time.Second,
		DataDir:                  "data",
		UserID:                   "local-user",
		RefreshSchedule:          "",
		SecondaryReminderMinutes: []int{5},
		LogLevel:                 "info",
	}
}

// SQLitePath returns the database location inside the data directory.
func (c Config) SQLitePath() string {
	return c.DataDir + "/assistant.db"
}

// Load resolves configuration. A YAML file named by CONFASSIST_CONFIG_FILE
// (when set and present) seeds the values; CONFASSIST_* environment variables
// override it. Missing required values and unparseable values are reported
// together rather than one at a time.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFASSIST_CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if url := strings.TrimSpace(os.Getenv("CONFASSIST_CATALOG_URL")); url != "" {
		cfg.CatalogURL = url
	}
	if cfg.CatalogURL == "" {
		missing = append(missing, "CONFASSIST_CATALOG_URL")
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("CONFASSIST_CATALOG_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "CONFASSIST_CATALOG_TIMEOUT")
		} else {
			cfg.CatalogTimeout = timeout
		}
	}

	if dir := strings.TrimSpace(os.Getenv("CONFASSIST_DATA_DIR")); dir != "" {
		cfg.DataDir = dir
	}

	if userID := strings.TrimSpace(os.Getenv("CONFASSIST_USER_ID")); userID != "" {
		cfg.UserID = userID
	}

	if schedule := strings.TrimSpace(os.Getenv("CONFASSIST_REFRESH_SCHEDULE")); schedule != "" {
		cfg.RefreshSchedule = schedule
	}

	if blockValue := strings.TrimSpace(os.Getenv("CONFASSIST_BLOCK_ON_CONFLICT")); blockValue != "" {
		block, err := strconv.ParseBool(blockValue)
		if err != nil {
			invalid = append(invalid, "CONFASSIST_BLOCK_ON_CONFLICT")
		} else {
			cfg.BlockOnConflict = block
		}
	}

	if offsetsValue := strings.TrimSpace(os.Getenv("CONFASSIST_SECONDARY_REMINDERS")); offsetsValue != "" {
		offsets, err := parseOffsets(offsetsValue)
		if err != nil {
			invalid = append(invalid, "CONFASSIST_SECONDARY_REMINDERS")
		} else {
			cfg.SecondaryReminderMinutes = offsets
		}
	}

	if level := strings.TrimSpace(os.Getenv("CONFASSIST_LOG_LEVEL")); level != "" {
		switch strings.ToLower(level) {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = strings.ToLower(level)
		default:
			invalid = append(invalid, "CONFASSIST_LOG_LEVEL")
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// loadFile merges YAML values over cfg. A missing file is not an error; the
// environment alone may carry a complete configuration.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// parseOffsets parses a comma-separated list of positive minute offsets.
func parseOffsets(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	offsets := make([]int, 0, len(parts))
	for _, part := range parts {
		minutes, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid reminder offset %q", part)
		}
		offsets = append(offsets, minutes)
	}
	return offsets, nil
}
