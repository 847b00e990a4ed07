package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	clientConfigDir      = ".config/world-explorer"
	clientConfigFileName = "config.yaml"

	DefaultBaseURL = "http://localhost:8080"
)

// ClientConfig is the command line client's config.yaml.
type ClientConfig struct {
	BaseURL   string `yaml:"base_url"`
	TokenFile string `yaml:"token_file,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
}

func DefaultClientConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user home directory: %w", err)
	}
	return filepath.Join(homeDir, clientConfigDir, clientConfigFileName), nil
}

// LoadClientConfig reads path over the defaults. A missing file gives the defaults.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := ClientConfig{BaseURL: DefaultBaseURL, LogLevel: "warn"}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return ClientConfig{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg, nil
}

// SaveClientConfig writes cfg to path, creating the directory if needed.
func SaveClientConfig(path string, cfg ClientConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
