// Package config loads the lawnd YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RemoteConfig points at the hosted job store.
type RemoteConfig struct {
	// URL is the REST root; the jobs resource lives at URL + "/jobs".
	URL string `yaml:"url" json:"url"`
	// APIKey authenticates requests. Leaving it empty disables the
	// remote store entirely and the app runs on the local mirror.
	APIKey string `yaml:"api_key" json:"api_key"`
	// ListTimeoutSeconds bounds the list call before falling back to the
	// mirror.
	ListTimeoutSeconds int `yaml:"list_timeout_seconds" json:"list_timeout_seconds"`
}

// CalendarConfig points at the external calendar service.
type CalendarConfig struct {
	URL   string `yaml:"url" json:"url"`
	Token string `yaml:"token" json:"token"`
	// Enabled toggles the calendar mirror side effect.
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// ArchiveConfig controls pre-delete snapshots.
type ArchiveConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// SweepCron is a 5-field cron expression for the retention sweep.
	SweepCron string `yaml:"sweep_cron" json:"sweep_cron"`
	// RetentionDays is how long snapshots are kept.
	RetentionDays int `yaml:"retention_days" json:"retention_days"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the JSON API.
	Listen string `yaml:"listen" json:"listen"`

	// MirrorPath is the sqlite file holding the local mirror, sync tasks
	// and archive.
	MirrorPath string `yaml:"mirror_path" json:"mirror_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// SyncPollMillis is the sync worker's poll interval.
	SyncPollMillis int `yaml:"sync_poll_millis" json:"sync_poll_millis"`

	Remote   RemoteConfig   `yaml:"remote" json:"remote"`
	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`
	Archive  ArchiveConfig  `yaml:"archive" json:"archive"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8484",
		MirrorPath:     "./lawn.db",
		LogLevel:       "info",
		SyncPollMillis: 500,
		Archive: ArchiveConfig{
			Enabled:       true,
			SweepCron:     "0 3 * * *",
			RetentionDays: 90,
		},
	}
}

// Normalize fills in missing/zero values so partially-filled configs still
// behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8484"
	}
	if c.MirrorPath == "" {
		c.MirrorPath = "./lawn.db"
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
	if c.SyncPollMillis <= 0 {
		c.SyncPollMillis = 500
	}
	if c.Remote.ListTimeoutSeconds <= 0 {
		c.Remote.ListTimeoutSeconds = 10
	}
	if c.Archive.SweepCron == "" {
		c.Archive.SweepCron = "0 3 * * *"
	}
	if c.Archive.RetentionDays <= 0 {
		c.Archive.RetentionDays = 90
	}
}

// ListTimeout returns the remote list timeout as a duration.
func (c *Config) ListTimeout() time.Duration {
	return time.Duration(c.Remote.ListTimeoutSeconds) * time.Second
}

// SyncPoll returns the sync worker poll interval as a duration.
func (c *Config) SyncPoll() time.Duration {
	return time.Duration(c.SyncPollMillis) * time.Millisecond
}

// Retention returns the archive retention window as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Archive.RetentionDays) * 24 * time.Hour
}

// Load reads the config at path. A missing file creates one with defaults
// so first runs work without hand-written config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if saveErr := Save(path, cfg); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("lawn: parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the config with 0600 permissions (it can hold credentials).
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}

// ApplyEnv overlays environment variables onto the config. Variables win
// over file values so deployments can keep credentials out of the file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LAWN_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("LAWN_MIRROR_PATH"); v != "" {
		c.MirrorPath = v
	}
	if v := os.Getenv("LAWN_REMOTE_URL"); v != "" {
		c.Remote.URL = v
	}
	if v := os.Getenv("LAWN_REMOTE_API_KEY"); v != "" {
		c.Remote.APIKey = v
	}
	if v := os.Getenv("LAWN_CALENDAR_URL"); v != "" {
		c.Calendar.URL = v
		c.Calendar.Enabled = true
	}
	if v := os.Getenv("LAWN_CALENDAR_TOKEN"); v != "" {
		c.Calendar.Token = v
	}
	if v := os.Getenv("LAWN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
		c.Normalize()
	}
}
