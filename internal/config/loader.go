package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = "darkhound.yml"

// Load reads the configuration file at path (or the first one found by
// FindConfigFile when path is empty), overlays defaults, and applies
// credential environment variables. The result still needs Normalize
// and Validate before use.
func Load(path string) (*Config, error) {
	cfg := New()

	found := FindConfigFile(path)
	if found == "" {
		if path != "" {
			return nil, ErrConfigNotFound
		}
		// No file anywhere: run on defaults plus environment. Validate
		// rejects the empty source list later with a clearer error.
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(found) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for darkhound.yml in the current directory
// 3. Look for darkhound.yml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

// applyEnv copies credentials and overrides from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSMTPUsername); v != "" {
		c.Alerting.Username = v
	}
	if v := os.Getenv(EnvSMTPPassword); v != "" {
		c.Alerting.Password = v
	}
	if v := os.Getenv(EnvFeedAPIKey); v != "" {
		c.Feed.APIKey = v
	}
	if v := os.Getenv(EnvSocksAddr); v != "" {
		c.Proxy.SocksAddr = v
	}
}
