// Package config loads service configuration from the environment and an
// optional YAML file named by CONFIG_FILE.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/threestatement/internal/coa"
	"github.com/example/threestatement/internal/forecast"
	"github.com/example/threestatement/internal/security"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	DatabaseURL string
	APIAddr     string
	GRPCAddr    string
	LogLevel    string

	MaxBodyBytes          int64
	RedisAddr             string
	RateLimitCapacity     int
	RateLimitRefillPerSec float64

	ConfigFile string
	File       File
}

// File is the optional YAML configuration.
type File struct {
	Engine   coa.Codes          `yaml:"engine"`
	Database DatabaseConfig     `yaml:"database"`
	Forecast ForecastConfig     `yaml:"forecast"`
	TLS      security.TLSConfig `yaml:"tls"`
}

type DatabaseConfig struct {
	MaxOpenConns        int `yaml:"max_open_conns"`
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds"`
}

type ForecastConfig struct {
	DefaultScenario string `yaml:"default_scenario"`
}

// DefaultFile returns the file configuration used when CONFIG_FILE is unset.
func DefaultFile() File {
	return File{
		Engine:   coa.DefaultCodes(),
		Database: DatabaseConfig{QueryTimeoutSeconds: 5},
		Forecast: ForecastConfig{DefaultScenario: forecast.DefaultScenario},
	}
}

// LoadFile reads a YAML file over the defaults, so omitted keys keep their
// default values.
func LoadFile(path string) (File, error) {
	f := DefaultFile()
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing config: %w", err)
	}
	return f, nil
}

// SaveFile writes a File as YAML.
func SaveFile(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Load reads the environment, then CONFIG_FILE when set, then validates.
func Load() (*Config, error) {
	var parseErrs []string
	intVar := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			parseErrs = append(parseErrs, key)
			return def
		}
		return i
	}
	floatVar := func(key string, def float64) float64 {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			parseErrs = append(parseErrs, key)
			return def
		}
		return f
	}

	cfg := &Config{
		Environment:           os.Getenv("APP_ENV"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		APIAddr:               getenv("API_ADDR", ":8080"),
		GRPCAddr:              getenv("GRPC_ADDR", ":50051"),
		LogLevel:              getenv("LOG_LEVEL", "info"),
		MaxBodyBytes:          int64(intVar("API_MAX_BODY_BYTES", 1<<20)),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RateLimitCapacity:     intVar("API_RATE_LIMIT_CAPACITY", 20),
		RateLimitRefillPerSec: floatVar("API_RATE_LIMIT_REFILL_PER_SEC", 10),
		ConfigFile:            os.Getenv("CONFIG_FILE"),
		File:                  DefaultFile(),
	}
	if len(parseErrs) > 0 {
		return nil, errors.New("invalid numeric environment variables: " + strings.Join(parseErrs, ", "))
	}

	if cfg.ConfigFile != "" {
		f, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.File = f
	}
	if v := os.Getenv("API_TLS_CERT"); v != "" {
		cfg.File.TLS.CertFile = v
	}
	if v := os.Getenv("API_TLS_KEY"); v != "" {
		cfg.File.TLS.KeyFile = v
	}
	if v := os.Getenv("API_TLS_CA"); v != "" {
		cfg.File.TLS.ClientCAFile = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var missing []string

	if c.Environment == "" {
		missing = append(missing, "APP_ENV")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}

	// Shared environments run against Postgres; SQLite is for local use.
	if c.IsProduction() && !IsPostgresURL(c.DatabaseURL) {
		return errors.New("DATABASE_URL must be a postgres:// URL in " + c.Environment)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("API_MAX_BODY_BYTES must be positive")
	}
	if c.RateLimitCapacity < 0 || c.RateLimitRefillPerSec < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	if c.File.Engine.Cash == "" || c.File.Engine.RetainedEarnings == "" {
		return errors.New("engine.cash_account_code and engine.retained_earnings_code are required")
	}
	if c.File.Database.MaxOpenConns < 0 || c.File.Database.QueryTimeoutSeconds < 0 {
		return errors.New("database settings must not be negative")
	}
	if c.File.TLS.Enabled() && c.File.TLS.KeyFile == "" {
		return errors.New("API_TLS_KEY is required when API_TLS_CERT is set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

func IsPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// ParseLevel maps LOG_LEVEL to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return l, nil
}
