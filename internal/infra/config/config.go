// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Relay  RelayConfig  `yaml:"relay"`
	Log    LogConfig    `yaml:"log"`
	Sinks  []SinkConfig `yaml:"sinks" validate:"dive"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8099"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// RelayConfig represents the event classification configuration.
type RelayConfig struct {
	PauseDebounceSecs   float64  `yaml:"pause_debounce_secs" default:"5" validate:"gte=0,lte=300"`
	CreditsThresholdPct float64  `yaml:"credits_threshold_pct" default:"95" validate:"gt=0,lte=100"`
	AllowedDevices      []string `yaml:"allowed_devices"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level string `yaml:"level" default:"info"`
}

// SinkConfig represents a single notification sink configuration.
type SinkConfig struct {
	Type     string         `yaml:"type" validate:"required"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// Load loads configuration from a YAML file. The file is optional: when it
// does not exist the configuration comes from defaults and environment
// variables alone. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
		// Defaults + env only.
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("HA_WEBHOOK_URL"); v != "" {
		c.setWebhookURL(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return errors.Wrap(err, "invalid PORT")
		}
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("PAUSE_DEBOUNCE_SECS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(err, "invalid PAUSE_DEBOUNCE_SECS")
		}
		c.Relay.PauseDebounceSecs = f
	}
	if v := os.Getenv("CREDITS_THRESHOLD_PCT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(err, "invalid CREDITS_THRESHOLD_PCT")
		}
		c.Relay.CreditsThresholdPct = f
	}
	if v := os.Getenv("ALLOWED_DEVICES"); v != "" {
		var devices []string
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				devices = append(devices, d)
			}
		}
		c.Relay.AllowedDevices = devices
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// setWebhookURL points the first webhook sink at the given URL, adding one
// if none is configured.
func (c *Config) setWebhookURL(url string) {
	for i := range c.Sinks {
		if c.Sinks[i].Type == "webhook" {
			if c.Sinks[i].Settings == nil {
				c.Sinks[i].Settings = make(map[string]any)
			}
			c.Sinks[i].Settings["url"] = url
			return
		}
	}
	c.Sinks = append(c.Sinks, SinkConfig{
		Type:     "webhook",
		Settings: map[string]any{"url": url},
	})
}

// PauseDebounce returns the pause debounce delay as a duration.
func (c *Config) PauseDebounce() time.Duration {
	return time.Duration(c.Relay.PauseDebounceSecs * float64(time.Second))
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
