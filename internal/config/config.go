// Package config loads server configuration from optional YAML profile
// files and AUTOBOARD_* environment variables. Environment wins.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingDSN    = errors.New("database dsn is empty")
	ErrUnknownDriver = errors.New("unknown database driver")
	ErrInvalidAddr   = errors.New("invalid listen address")
	ErrMissingFiles  = errors.New("files directory is empty")
)

// Config holds server configuration.
type Config struct {
	Profile    string        `yaml:"-"`
	Addr       string        `yaml:"addr"`
	DBDriver   string        `yaml:"db_driver"`
	DSN        string        `yaml:"dsn"`
	LogLevel   string        `yaml:"log_level"`
	LogFormat  string        `yaml:"log_format"`
	RedisAddr  string        `yaml:"redis_addr"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	FilesDir   string        `yaml:"files_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:       ":8000",
		DBDriver:   "sqlite",
		DSN:        "autoboard.db",
		LogLevel:   "info",
		LogFormat:  "json",
		SessionTTL: 2 * time.Hour,
		FilesDir:   "files",
	}
}

// Load reads config.yaml and config.<profile>.yaml from the config
// directory (AUTOBOARD_CONFIG_DIR, default ".") when they exist, then
// applies environment overrides. An empty profile falls back to
// AUTOBOARD_PROFILE.
func Load(profile string) (Config, error) {
	cfg := Default()
	if profile == "" {
		profile = os.Getenv("AUTOBOARD_PROFILE")
	}
	cfg.Profile = profile

	dir := envOrDefault("AUTOBOARD_CONFIG_DIR", ".")
	files := []string{filepath.Join(dir, "config.yaml")}
	if profile != "" {
		files = append(files, filepath.Join(dir, "config."+profile+".yaml"))
	}
	for _, f := range files {
		if err := mergeFile(&cfg, f); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Addr = envOrDefault("AUTOBOARD_ADDR", cfg.Addr)
	cfg.DBDriver = envOrDefault("AUTOBOARD_DB_DRIVER", cfg.DBDriver)
	cfg.DSN = envOrDefault("AUTOBOARD_DSN", cfg.DSN)
	cfg.LogLevel = envOrDefault("AUTOBOARD_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOrDefault("AUTOBOARD_LOG_FORMAT", cfg.LogFormat)
	cfg.RedisAddr = envOrDefault("AUTOBOARD_REDIS_ADDR", cfg.RedisAddr)
	cfg.FilesDir = envOrDefault("AUTOBOARD_FILES_DIR", cfg.FilesDir)
	if v := os.Getenv("AUTOBOARD_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AUTOBOARD_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}
	return nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.DBDriver)
	}
	if c.DSN == "" {
		return ErrMissingDSN
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAddr, c.Addr)
	}
	if c.FilesDir == "" {
		return ErrMissingFiles
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
