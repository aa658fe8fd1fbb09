// Package config loads settings from an optional TOML file with environment
// variable overrides. Environment always wins so deployments can patch a
// single value without editing the file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// Remote API
	APIBaseURL string        `toml:"api_base_url"`
	APITimeout time.Duration `toml:"-"`

	// Raw TOML duration strings, parsed into the fields above.
	APITimeoutRaw string `toml:"api_timeout"`

	// Local credential vault
	VaultDBPath string `toml:"vault_db_path"`

	// AMQP change feed. Empty URL disables the listener.
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`

	// Metrics endpoint for the watch daemon. Empty disables it.
	MetricsAddr string `toml:"metrics_addr"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

func defaults() *Config {
	return &Config{
		APIBaseURL:   "http://localhost:8080/api",
		APITimeout:   10 * time.Second,
		VaultDBPath:  "./data/spendsync.db",
		AMQPURL:      "",
		AMQPExchange: "spendsync",
		AMQPQueue:    "resource_changes",
		MetricsAddr:  "",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads the TOML file at path when it exists, then applies environment
// overrides. A missing file is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
			if cfg.APITimeoutRaw != "" {
				d, err := time.ParseDuration(cfg.APITimeoutRaw)
				if err != nil {
					return nil, fmt.Errorf("parse api_timeout: %w", err)
				}
				cfg.APITimeout = d
			}
		}
	}

	cfg.APIBaseURL = getEnv("SPENDSYNC_API_URL", cfg.APIBaseURL)
	cfg.APITimeout = getEnvDuration("SPENDSYNC_API_TIMEOUT", cfg.APITimeout)
	cfg.VaultDBPath = getEnv("SPENDSYNC_VAULT_DB_PATH", cfg.VaultDBPath)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)
	cfg.MetricsAddr = getEnv("SPENDSYNC_METRICS_ADDR", cfg.MetricsAddr)
	cfg.LogLevel = getEnv("SPENDSYNC_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("SPENDSYNC_LOG_FORMAT", cfg.LogFormat)

	return cfg, nil
}

// Validate collects every problem instead of stopping at the first one.
func (c *Config) Validate() error {
	var errs []string

	if c.APIBaseURL == "" {
		errs = append(errs, "API base URL cannot be empty")
	} else if parsed, err := url.Parse(c.APIBaseURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	}

	if c.APITimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid API timeout %v: must be at least 1 second", c.APITimeout))
	} else if c.APITimeout > 5*time.Minute {
		errs = append(errs, fmt.Sprintf("invalid API timeout %v: must be at most 5 minutes", c.APITimeout))
	}

	if c.VaultDBPath == "" {
		errs = append(errs, "vault database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "pretty":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be one of text, json, pretty", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
