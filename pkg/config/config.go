// Package config loads the assetflow server configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server runtime configuration.
type Config struct {
	Listen   string         `yaml:"listen" json:"listen"`
	LogLevel string         `yaml:"logLevel" json:"logLevel"`
	Database DatabaseConfig `yaml:"database" json:"database"`
}

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	// Type is sqlite, postgres, or mysql.
	Type string `yaml:"type" json:"type"`
	// DSN is the driver connection string; for sqlite, a file path or
	// :memory:.
	DSN string `yaml:"dsn" json:"dsn"`
}

// Load reads configuration from a YAML file. If the file does not exist,
// default configuration is returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Default returns the default configuration: an embedded sqlite database
// and the standard listen address.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "assetflow.db",
		},
	}
}
