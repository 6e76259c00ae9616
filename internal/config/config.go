package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"findash/internal/logging"
	"findash/internal/services/classifier"
)

// DefaultTimezone is the civil timezone ranges are resolved in
const DefaultTimezone = "Europe/London"

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`

	// Directories
	DataDirectory     string `json:"data_directory"`
	SettingsDirectory string `json:"settings_directory"`

	// File paths
	RulesFile string `json:"rules_file"`

	// Engine settings
	CacheTTL time.Duration `json:"cache_ttl"`
	Timezone string        `json:"timezone"`

	// Logging and metrics
	LogLevel         string `json:"log_level"`
	LogFormat        string `json:"log_format"`
	MetricsNamespace string `json:"metrics_namespace"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:        ":8080",
		DataDirectory:     filepath.Join(wd, "data"),
		SettingsDirectory: filepath.Join(wd, "data", "settings"),
		RulesFile:         filepath.Join(wd, "data", "settings", "rules.json"),
		CacheTTL:          5 * time.Minute,
		Timezone:          DefaultTimezone,
		LogLevel:          "info",
		LogFormat:         "json",
		MetricsNamespace:  "findash",
	}
}

// Load builds configuration from defaults and FINDASH_* environment variables
// and creates the data directories
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if addr := os.Getenv("FINDASH_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := os.Getenv("FINDASH_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}
	if dataDir := os.Getenv("FINDASH_DATA_DIR"); dataDir != "" {
		cfg.SetDataDirectory(dataDir)
	}
	if ttl := os.Getenv("FINDASH_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid FINDASH_CACHE_TTL %q: must be a positive duration", ttl)
		}
		cfg.CacheTTL = d
	}
	if tz := os.Getenv("FINDASH_TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}
	if level := os.Getenv("FINDASH_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if format := os.Getenv("FINDASH_LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}

	if err := cfg.ensureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDataDirectory points every derived path at dataDir
func (c *Config) SetDataDirectory(dataDir string) {
	c.DataDirectory = dataDir
	c.SettingsDirectory = filepath.Join(dataDir, "settings")
	c.RulesFile = filepath.Join(dataDir, "settings", "rules.json")
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() error {
	for _, dir := range []string{c.DataDirectory, c.SettingsDirectory} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC when the
// zone database does not know it
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Logging returns the logger configuration
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:       c.LogLevel,
		Format:      c.LogFormat,
		OutputPaths: []string{"stdout"},
	}
}

// LoadRules returns the keyword tables, overlaying rules.json on the
// defaults when the file exists
func (c *Config) LoadRules() (classifier.Rules, error) {
	rules := classifier.DefaultRules()

	data, err := os.ReadFile(c.RulesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return classifier.Rules{}, err
	}

	var over classifier.Rules
	if err := json.Unmarshal(data, &over); err != nil {
		return classifier.Rules{}, fmt.Errorf("invalid rules file %s: %w", c.RulesFile, err)
	}
	return rules.Merge(over), nil
}
