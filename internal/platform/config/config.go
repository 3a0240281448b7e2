// Package config loads harvester configuration from built-in defaults, an
// optional YAML file and ARBT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the XDG config directory.
	AppName = "arbt"

	// DefaultConfigFile is searched for under the XDG config directories
	// when no explicit path is given.
	DefaultConfigFile = AppName + "/config.yaml"

	DefaultAddr              = ":8080"
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultBrregBaseURL      = "https://data.brreg.no/enhetsregisteret/api"
	DefaultMaxDepth          = 16
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultBreakerFailures   = 5
	DefaultBreakerSuccesses  = 1
	DefaultBreakerOpenPeriod = 30 * time.Second

	// TemplatePlaceholder must appear in every dataset URL template.
	TemplatePlaceholder = "{orgnr}"
)

// Configuration validation errors.
var (
	ErrConfigNotFound    = errors.New("configuration file not found")
	ErrMissingTemplate   = errors.New("dataset url template is required")
	ErrInvalidTemplate   = errors.New("dataset url template must contain " + TemplatePlaceholder)
	ErrInvalidBaseURL    = errors.New("brreg base url must be an http(s) url")
	ErrInvalidTimeout    = errors.New("http timeout must be positive")
	ErrInvalidBreaker    = errors.New("circuit breaker thresholds must be positive")
	ErrInvalidLogLevel   = errors.New("log level must be debug, info, warn or error")
	ErrInvalidLogFormat  = errors.New("log format must be json or text")
	ErrInvalidMaxDepth   = errors.New("resolution max depth must be positive")
	ErrInvalidListenAddr = errors.New("server addr is required")
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Registry holds the upstream endpoints. Dataset URLs are templates with
// TemplatePlaceholder standing in for the resolved organization number.
type Registry struct {
	BrregBaseURL string `yaml:"brreg_base_url"`
	BemanningURL string `yaml:"bemanning_url"`
	RenholdURL   string `yaml:"renhold_url"`
	BilpleieURL  string `yaml:"bilpleie_url"`
	MaxDepth     int    `yaml:"max_depth"`
}

// HTTPClient configures the outbound transport and its circuit breaker.
type HTTPClient struct {
	Timeout            time.Duration `yaml:"timeout"`
	BreakerFailures    int           `yaml:"breaker_failures"`
	BreakerSuccesses   int           `yaml:"breaker_successes"`
	BreakerOpenTimeout time.Duration `yaml:"breaker_open_timeout"`
}

// Config is the complete harvester configuration.
type Config struct {
	Server     Server     `yaml:"server"`
	Log        Log        `yaml:"log"`
	Registry   Registry   `yaml:"registry"`
	HTTPClient HTTPClient `yaml:"http_client"`
}

// Default returns the built-in configuration. Dataset templates have no
// default and must be supplied.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Registry: Registry{
			BrregBaseURL: DefaultBrregBaseURL,
			MaxDepth:     DefaultMaxDepth,
		},
		HTTPClient: HTTPClient{
			Timeout:            DefaultHTTPTimeout,
			BreakerFailures:    DefaultBreakerFailures,
			BreakerSuccesses:   DefaultBreakerSuccesses,
			BreakerOpenTimeout: DefaultBreakerOpenPeriod,
		},
	}
}

// Load builds the configuration. An explicit path must exist; without one
// the XDG config directories are searched and a missing file is not an
// error. Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if found, err := xdg.SearchConfigFile(DefaultConfigFile); err == nil {
			path = found
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from ARBT_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ARBT_ADDR", &c.Server.Addr)
	str("ARBT_LOG_LEVEL", &c.Log.Level)
	str("ARBT_LOG_FORMAT", &c.Log.Format)
	str("ARBT_BRREG_BASE_URL", &c.Registry.BrregBaseURL)
	str("ARBT_BEMANNING_URL", &c.Registry.BemanningURL)
	str("ARBT_RENHOLD_URL", &c.Registry.RenholdURL)
	str("ARBT_BILPLEIE_URL", &c.Registry.BilpleieURL)

	durations := map[string]*time.Duration{
		"ARBT_SHUTDOWN_TIMEOUT":     &c.Server.ShutdownTimeout,
		"ARBT_HTTP_TIMEOUT":         &c.HTTPClient.Timeout,
		"ARBT_BREAKER_OPEN_TIMEOUT": &c.HTTPClient.BreakerOpenTimeout,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"ARBT_MAX_DEPTH":         &c.Registry.MaxDepth,
		"ARBT_BREAKER_FAILURES":  &c.HTTPClient.BreakerFailures,
		"ARBT_BREAKER_SUCCESSES": &c.HTTPClient.BreakerSuccesses,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	return nil
}

// Validate returns the first configuration problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return ErrInvalidListenAddr
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return ErrInvalidLogFormat
	}

	if !strings.HasPrefix(c.Registry.BrregBaseURL, "http://") && !strings.HasPrefix(c.Registry.BrregBaseURL, "https://") {
		return ErrInvalidBaseURL
	}
	for name, tmpl := range map[string]string{
		"bemanning_url": c.Registry.BemanningURL,
		"renhold_url":   c.Registry.RenholdURL,
		"bilpleie_url":  c.Registry.BilpleieURL,
	} {
		if strings.TrimSpace(tmpl) == "" {
			return fmt.Errorf("%w: %s", ErrMissingTemplate, name)
		}
		if !strings.Contains(tmpl, TemplatePlaceholder) {
			return fmt.Errorf("%w: %s", ErrInvalidTemplate, name)
		}
	}
	if c.Registry.MaxDepth <= 0 {
		return ErrInvalidMaxDepth
	}

	if c.HTTPClient.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.HTTPClient.BreakerFailures <= 0 || c.HTTPClient.BreakerSuccesses <= 0 || c.HTTPClient.BreakerOpenTimeout <= 0 {
		return ErrInvalidBreaker
	}
	return nil
}
