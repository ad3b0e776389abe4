// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

// Package config loads and validates process-wide configuration. Values are
// read once at startup and are read-only afterwards; there is no hot reload.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/mindsentry/identity/internal/auth"
)

// Environment variables consulted after file and flag loading. Secrets come
// only from the environment or a config file, never from command lines.
const (
	EnvDatabaseURL   = "DATABASE_URL"
	EnvSigningSecret = "IDENTITY_SIGNING_SECRET"
)

// Defaults for optional settings.
const (
	DefaultHTTPAddr        = ":8080"
	DefaultMetricsAddr     = "127.0.0.1:9100"
	DefaultLogFormat       = "json"
	DefaultTokenTTLMinutes = 43200 // 30 days
)

// Config holds all process-wide settings.
type Config struct {
	HTTPAddr        string `koanf:"http_addr"`
	MetricsAddr     string `koanf:"metrics_addr"`
	LogFormat       string `koanf:"log_format"`
	DatabaseURL     string `koanf:"database_url"`
	SigningSecret   string `koanf:"signing_secret"`
	TokenTTLMinutes int    `koanf:"token_ttl_minutes"`
}

// TokenTTL returns the configured bearer token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// Load builds a Config by layering, lowest to highest precedence: built-in
// defaults, an optional YAML file, command-line flags, and environment
// variables for the database URL and signing secret.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := &Config{
		HTTPAddr:        DefaultHTTPAddr,
		MetricsAddr:     DefaultMetricsAddr,
		LogFormat:       DefaultLogFormat,
		TokenTTLMinutes: DefaultTokenTTLMinutes,
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv(EnvSigningSecret); v != "" {
		cfg.SigningSecret = v
	}

	return cfg, nil
}

// Validate checks that the configuration can run a server. Violations are
// fatal at startup; nothing here is recoverable per request.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("http_addr is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be 'json' or 'text'")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (set %s)", EnvDatabaseURL)
	}
	// No default secret ships with the binary; each deployment provides one.
	if c.SigningSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("signing secret is required (set %s)", EnvSigningSecret)
	}
	if len(c.SigningSecret) < auth.MinSigningSecretBytes {
		return oops.Code("CONFIG_INVALID").
			With("min_bytes", auth.MinSigningSecretBytes).
			Errorf("signing secret must be at least %d bytes", auth.MinSigningSecretBytes)
	}
	if c.TokenTTLMinutes <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token_ttl_minutes must be positive")
	}
	return nil
}
