package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	defaultServerURL = "http://localhost:30080"
	envVarServerURL  = "TASKDECK_API_URL"
	configFileName   = ".taskdeck/config.yml"
)

// Config holds the taskctl configuration
type Config struct {
	ServerURL string `yaml:"server"`
}

// Load reads ~/.taskdeck/config.yml. A missing file is not an error; a file
// that exists but does not parse is.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadFromFile(cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return cfg, nil
}

// GetServerURL returns the server URL with priority: env var > config file > default
func (c *Config) GetServerURL() string {
	if url := strings.TrimSpace(os.Getenv(envVarServerURL)); url != "" {
		return url
	}

	if c.ServerURL != "" {
		return c.ServerURL
	}

	return defaultServerURL
}

func loadFromFile(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(homeDir, configFileName))
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}
