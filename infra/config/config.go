package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const appDir = "kabinka"

// Config holds application-level configuration read from KABINKA_* variables.
type Config struct {
	// Instance is the home server URL, e.g. "https://mastodon.social". Only https is accepted.
	Instance string `envconfig:"KABINKA_INSTANCE" default:"https://mastodon.social"`
	// Dir is where tokens, the database and the log live. Defaults to ~/.config/kabinka.
	Dir       string `envconfig:"KABINKA_DIR"`
	Anonymous bool   `envconfig:"KABINKA_ANONYMOUS" default:"false"`
	Timeline  string `envconfig:"KABINKA_TIMELINE" default:"home"`
	Auth      struct {
		Dir          string `envconfig:"KABINKA_AUTH_DIR"`
		CallbackPort int    `envconfig:"KABINKA_OAUTH_CALLBACK_PORT" default:"45145"`
	}
	Data struct {
		Path string `envconfig:"KABINKA_DATA_PATH"`
	}
	Http struct {
		Timeout time.Duration `envconfig:"KABINKA_HTTP_TIMEOUT" default:"30s"`
	}
	Instances struct {
		CacheTTL  time.Duration `envconfig:"KABINKA_INSTANCE_CACHE_TTL" default:"1h"`
		CacheSize int           `envconfig:"KABINKA_INSTANCE_CACHE_SIZE" default:"16"`
	}
	Log struct {
		// Level is a log/slog level: -4 debug, 0 info, 4 warn, 8 error.
		Level int    `envconfig:"KABINKA_LOG_LEVEL" default:"0"`
		Path  string `envconfig:"KABINKA_LOG_PATH"`
	}
}

// Load reads configuration from environment variables, fills the path
// defaults and normalizes the instance URL.
func Load() (cfg Config, err error) {
	if err = envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if cfg.Instance, err = normalizeInstance(cfg.Instance); err != nil {
		return Config{}, err
	}
	if cfg.Auth.CallbackPort <= 0 || cfg.Auth.CallbackPort > 65535 {
		return Config{}, fmt.Errorf("invalid KABINKA_OAUTH_CALLBACK_PORT: %d", cfg.Auth.CallbackPort)
	}
	if cfg.Http.Timeout <= 0 {
		return Config{}, fmt.Errorf("invalid KABINKA_HTTP_TIMEOUT: must be positive")
	}
	if cfg.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfg.Dir = filepath.Join(home, ".config", appDir)
	}
	if cfg.Auth.Dir == "" {
		cfg.Auth.Dir = filepath.Join(cfg.Dir, "auth")
	}
	if cfg.Data.Path == "" {
		cfg.Data.Path = filepath.Join(cfg.Dir, appDir+".db")
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = filepath.Join(cfg.Dir, appDir+".log")
	}
	return cfg, nil
}

func normalizeInstance(instance string) (string, error) {
	instance = strings.TrimSpace(instance)
	if !strings.Contains(instance, "://") {
		instance = "https://" + instance
	}
	parsed, err := url.Parse(instance)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid KABINKA_INSTANCE: must be an absolute URL")
	}
	if parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid KABINKA_INSTANCE: only https is allowed")
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}

// Domain is the bare host of the configured instance.
func (c Config) Domain() string {
	u, err := url.Parse(c.Instance)
	if err != nil {
		return ""
	}
	return u.Host
}
