package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/pithecene-io/gopherline/log"
	"github.com/pithecene-io/gopherline/policy"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "gopherline.yaml"

// Config represents a gopherline.yaml file.
// All values are optional defaults; CLI flags always override them.
type Config struct {
	Source  string        `yaml:"source"`
	Origin  OriginConfig  `yaml:"origin"`
	Policy  PolicyConfig  `yaml:"policy"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Adapter AdapterConfig `yaml:"adapter"`
}

// OriginConfig is the host and port stamped on encoded resource lines.
type OriginConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// PolicyConfig selects the decode error policy.
type PolicyConfig struct {
	Name string `yaml:"name"`
}

// LogConfig holds logging defaults.
type LogConfig struct {
	Level string `yaml:"level"`
}

// StorageConfig holds archive defaults.
type StorageConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds notification adapter defaults.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	// Retries is nil when omitted so the adapter default applies;
	// an explicit 0 disables retries.
	Retries *int `yaml:"retries,omitempty"`
}

// Storage backends.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// Adapter types.
const (
	AdapterWebhook = "webhook"
	AdapterRedis   = "redis"
)

// Duration wraps time.Duration for YAML strings like "10s" or "5m30s".
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string. Empty means zero.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	d.Duration = parsed
	return nil
}

// Validate checks values that can be checked without touching the network
// or filesystem. Empty values are always valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Origin.Port < 0 || c.Origin.Port > 65535 {
		errs = append(errs, fmt.Errorf("origin.port %d out of range 0-65535", c.Origin.Port))
	}
	if c.Policy.Name != "" {
		if _, err := policy.New(c.Policy.Name); err != nil {
			errs = append(errs, fmt.Errorf("policy.name: %w", err))
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Storage.Backend {
	case "", BackendFS, BackendS3:
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q: must be %s or %s", c.Storage.Backend, BackendFS, BackendS3))
	}
	switch c.Adapter.Type {
	case "":
	case AdapterWebhook, AdapterRedis:
		if c.Adapter.URL == "" {
			errs = append(errs, fmt.Errorf("adapter.url is required for %s adapter", c.Adapter.Type))
		}
	default:
		errs = append(errs, fmt.Errorf("adapter.type %q: must be %s or %s", c.Adapter.Type, AdapterWebhook, AdapterRedis))
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		errs = append(errs, fmt.Errorf("adapter.retries must be >= 0, got %d", *c.Adapter.Retries))
	}
	return errors.Join(errs...)
}
