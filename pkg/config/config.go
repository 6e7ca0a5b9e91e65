// Package config loads service settings from defaults, an optional YAML file,
// an optional .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config/config.yaml"
	DefaultPort       = "8080"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Upstream      UpstreamConfig      `yaml:"upstream"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
	Reference     ReferenceConfig     `yaml:"reference"`
}

type ServerConfig struct {
	Port               string        `yaml:"port"`
	ReadTimeout        time.Duration `yaml:"read-timeout"`
	WriteTimeout       time.Duration `yaml:"write-timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown-timeout"`
	RateLimitPerSecond int           `yaml:"rate-limit-per-second"`
	RateLimitBurst     int           `yaml:"rate-limit-burst"`
	AllowedOrigins     []string      `yaml:"allowed-origins"`
}

type UpstreamConfig struct {
	RestCountriesURL string        `yaml:"restcountries-url"`
	SunriseSunsetURL string        `yaml:"sunrise-sunset-url"`
	Timeout          time.Duration `yaml:"timeout"`
}

type ObservabilityConfig struct {
	MetricsEnabled bool `yaml:"metrics-enabled"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ReferenceConfig is the point summary distances are measured from.
type ReferenceConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:               DefaultPort,
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			RateLimitPerSecond: 20,
			RateLimitBurst:     40,
			AllowedOrigins:     []string{"http://localhost:3000"},
		},
		Upstream: UpstreamConfig{
			RestCountriesURL: "https://restcountries.com/v3.1",
			SunriseSunsetURL: "https://api.sunrise-sunset.org",
			Timeout:          12 * time.Second,
		},
		Observability: ObservabilityConfig{MetricsEnabled: true},
		Logging:       LoggingConfig{Level: "info", Format: "text"},
		Reference:     ReferenceConfig{Latitude: -33.9759724, Longitude: 18.4592032},
	}
}

// Load builds the configuration. A missing YAML or .env file is not an
// error; a malformed one, or a malformed environment value, is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultConfigPath
	}
	return LoadFile(path)
}

// LoadFile applies defaults, then path, then environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Upstream.RestCountriesURL == "" || c.Upstream.SunriseSunsetURL == "" {
		return errors.New("upstream urls are required")
	}
	if c.Server.RateLimitPerSecond < 0 || c.Server.RateLimitBurst < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("RESTCOUNTRIES_BASE_URL"); v != "" {
		cfg.Upstream.RestCountriesURL = v
	}
	if v := os.Getenv("SUNRISE_SUNSET_BASE_URL"); v != "" {
		cfg.Upstream.SunriseSunsetURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UPSTREAM_TIMEOUT: %w", err)
		}
		cfg.Upstream.Timeout = d
	}
	if v := os.Getenv("RATE_LIMIT_PER_SECOND"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_PER_SECOND: %w", err)
		}
		cfg.Server.RateLimitPerSecond = n
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.Server.RateLimitBurst = n
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("METRICS_ENABLED: %w", err)
		}
		cfg.Observability.MetricsEnabled = b
	}
	return nil
}
