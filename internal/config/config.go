// internal/config/config.go
//
// This package handles configuration and the .quickfix directory.
// Every user running the client gets a .quickfix/ folder in their home
// directory holding config.yaml and the activity log.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sonalgupta2005/QuickFixhub/internal/api"
)

const (
	// QuickfixDir is the name of the directory we create in the user home.
	QuickfixDir = ".quickfix"

	// EnvAPIURL overrides the configured backend URL.
	EnvAPIURL = "QUICKFIX_API_URL"
)

const defaultConfigYAML = `# quickfix client configuration
version: 1

api:
  # Backend API root.
  base_url: http://localhost:5000/api
  # Per-request deadline, in seconds.
  timeout_seconds: 10
  # Consecutive transport failures before the client stops trying for a while.
  breaker_threshold: 3
  # Seconds the circuit stays open before probing again.
  breaker_cooldown_seconds: 15
`

// fileConfig models config.yaml. Durations are plain seconds so the file
// stays hand-editable.
type fileConfig struct {
	Version int `yaml:"version"`
	API     struct {
		BaseURL                string `yaml:"base_url"`
		TimeoutSeconds         int    `yaml:"timeout_seconds"`
		BreakerThreshold       uint32 `yaml:"breaker_threshold"`
		BreakerCooldownSeconds int    `yaml:"breaker_cooldown_seconds"`
	} `yaml:"api"`
}

// Config holds the runtime configuration for the client.
type Config struct {
	// Dir is the .quickfix directory for this user.
	Dir string

	// API carries the backend client settings.
	API api.Config
}

// Load reads (creating on first run) the config file under dir and applies
// the environment override. Pass "" to use ~/.quickfix.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve home dir: %w", err)
		}
		dir = filepath.Join(home, QuickfixDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("config: ensure %s: %w", dir, err)
	}
	cfg := &Config{Dir: dir, API: api.DefaultConfig()}

	path := cfg.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
			return nil, fmt.Errorf("config: write default %s: %w", path, err)
		}
		data = []byte(defaultConfigYAML)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if url := strings.TrimSpace(file.API.BaseURL); url != "" {
		cfg.API.BaseURL = url
	}
	if file.API.TimeoutSeconds > 0 {
		cfg.API.Timeout = time.Duration(file.API.TimeoutSeconds) * time.Second
	}
	if file.API.BreakerThreshold > 0 {
		cfg.API.BreakerThreshold = file.API.BreakerThreshold
	}
	if file.API.BreakerCooldownSeconds > 0 {
		cfg.API.BreakerCooldown = time.Duration(file.API.BreakerCooldownSeconds) * time.Second
	}

	if url := strings.TrimSpace(os.Getenv(EnvAPIURL)); url != "" {
		cfg.API.BaseURL = url
	}
	return cfg, nil
}

// Path returns the on-disk location of config.yaml.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, "config.yaml")
}

// LogPath returns the activity log location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, "logs", "activity.log")
}
