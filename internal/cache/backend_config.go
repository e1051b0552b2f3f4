package cache

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultBackendConfigPath is where runner provisioning drops the cache
// backend configuration.
const DefaultBackendConfigPath = "/etc/biomeci/cache.yml"

// BackendConfig describes the S3-compatible store cache entries live in.
// It is read from a config file and overridable per-field via environment
// variables, so ephemeral runners can be configured either way.
type BackendConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// LoadBackendConfig reads the config file at path (absence is fine, all
// fields can come from the environment) and applies environment overrides.
func LoadBackendConfig(path string) (*BackendConfig, error) {
	cfg := &BackendConfig{UseSSL: true}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse cache backend config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read cache backend config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *BackendConfig) {
	if v := os.Getenv("BIOMECI_CACHE_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("BIOMECI_CACHE_BUCKET"); v != "" {
		cfg.Bucket = v
	}
	if v := os.Getenv("BIOMECI_CACHE_ACCESS_KEY"); v != "" {
		cfg.AccessKey = v
	}
	if v := os.Getenv("BIOMECI_CACHE_SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("BIOMECI_CACHE_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("BIOMECI_CACHE_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseSSL = b
		}
	}
}

// Validate checks that the config can reach a store.
func (c *BackendConfig) Validate() error {
	if c.Endpoint == "" {
		return errors.New("cache backend endpoint is required")
	}
	if c.Bucket == "" {
		return errors.New("cache backend bucket is required")
	}
	return nil
}
