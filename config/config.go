// Package config loads the redlistener configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Scraper struct {
		MinDelaySeconds int    `yaml:"min_delay_seconds"`
		MaxDelaySeconds int    `yaml:"max_delay_seconds"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		UserAgent       string `yaml:"user_agent"`
	} `yaml:"scraper"`
	Gemini struct {
		Model string `yaml:"model"`
	} `yaml:"gemini"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.Listen = ":8080"
	cfg.Database.Path = "reddit_threads.db"
	cfg.Scraper.MinDelaySeconds = 5
	cfg.Scraper.MaxDelaySeconds = 8
	cfg.Scraper.TimeoutSeconds = 12
	return cfg
}

// Load reads configuration from path. A missing file is not an error --
// defaults apply; a file that exists but cannot be parsed is.
// Environment variables REDLISTENER_LISTEN and REDLISTENER_DB override
// the file either way.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if listen := os.Getenv("REDLISTENER_LISTEN"); listen != "" {
		cfg.Listen = listen
	}
	if dbPath := os.Getenv("REDLISTENER_DB"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	return cfg, nil
}

// MinDelay returns the scraper's minimum inter-request delay.
func (c Config) MinDelay() time.Duration {
	return time.Duration(c.Scraper.MinDelaySeconds) * time.Second
}

// MaxDelay returns the scraper's maximum inter-request delay.
func (c Config) MaxDelay() time.Duration {
	return time.Duration(c.Scraper.MaxDelaySeconds) * time.Second
}

// RequestTimeout returns the per-request timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSeconds) * time.Second
}
