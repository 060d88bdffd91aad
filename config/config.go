// Package config provides YAML configuration parsing for hookwatch.
//
// This package enables running hookwatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Acme Activity
//	port: 8080
//	poll_interval: 15s
//	max_events: 50
//	webhook_secret: ${GITHUB_WEBHOOK_SECRET}
//	database: ${HOOKWATCH_DB:-hookwatch.db}
//	pause_when_idle: true
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minPollInterval is the minimum allowed polling interval for production configs.
// This prevents accidental DoS of the event endpoint with overly aggressive polling.
const minPollInterval = 1 * time.Second

const (
	defaultPort         = 8080
	defaultPollInterval = 15 * time.Second
	defaultMaxEvents    = 50
)

// Config is the root configuration structure for hookwatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "GitHub Activity" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// PollInterval is the time between dashboard polls.
	// Accepts duration strings like "10s", "1m".
	// Defaults to 15s.
	PollInterval Duration `yaml:"poll_interval"`

	// RequestTimeout bounds each poll. Defaults to 10s when unset.
	RequestTimeout Duration `yaml:"request_timeout"`

	// MaxEvents caps the number of displayed events. Defaults to 50.
	MaxEvents int `yaml:"max_events"`

	// SourceURL is the event endpoint to poll. Defaults to this server's
	// own /api/events.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	SourceURL string `yaml:"source_url"`

	// WebhookSecret enables GitHub signature verification.
	// Supports environment variable substitution.
	WebhookSecret string `yaml:"webhook_secret"`

	// Database is a SQLite file path. Events are kept in memory when empty.
	// Supports environment variable substitution.
	Database string `yaml:"database"`

	// PauseWhenIdle polls only while a dashboard viewer is connected.
	PauseWhenIdle bool `yaml:"pause_when_idle"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in source_url, webhook_secret and
// database. Defaults are applied for Port (8080), PollInterval (15s) and
// MaxEvents (50).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(defaultPollInterval)
	}
	if cfg.MaxEvents == 0 {
		cfg.MaxEvents = defaultMaxEvents
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout cannot be negative, got %s", c.RequestTimeout.Duration())
	}
	if c.RequestTimeout != 0 && c.RequestTimeout.Duration() < 100*time.Millisecond {
		return fmt.Errorf("request_timeout must be at least 100ms if specified, got %s", c.RequestTimeout.Duration())
	}

	if c.MaxEvents < 0 {
		return fmt.Errorf("max_events must be positive, got %d", c.MaxEvents)
	}

	var err error
	if c.SourceURL, err = expandEnvVars(c.SourceURL); err != nil {
		return fmt.Errorf("source_url: %w", err)
	}
	if c.SourceURL != "" {
		parsedURL, err := url.Parse(c.SourceURL)
		if err != nil {
			return fmt.Errorf("invalid source_url: %w", err)
		}
		if parsedURL.Scheme == "" {
			return fmt.Errorf("source_url must have a scheme (http:// or https://)")
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("source_url scheme must be http or https, got %q", parsedURL.Scheme)
		}
		if parsedURL.Host == "" {
			return fmt.Errorf("source_url must include a host")
		}
	}

	if c.WebhookSecret, err = expandEnvVars(c.WebhookSecret); err != nil {
		return fmt.Errorf("webhook_secret: %w", err)
	}
	if c.Database, err = expandEnvVars(c.Database); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	return nil
}
