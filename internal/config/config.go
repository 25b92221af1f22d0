// Package config loads and validates the daemon configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	certify "github.com/apontes/go-certify"
	"github.com/apontes/go-certify/internal/dateutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// maxConfigSize limits config input to prevent memory exhaustion (1MB).
const maxConfigSize = 1 << 20

// offlineEnv forces the offline preset: local launch profile, in-memory
// record store, filesystem publisher.
const offlineEnv = "CERTIFY_OFFLINE"

// Store drivers.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Publisher drivers.
const (
	PublisherS3   = "s3"
	PublisherFile = "file"
)

// Config holds all daemon configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Bucket BucketConfig `yaml:"bucket"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr       string `yaml:"addr"`       // host:port (default ":8080")
	Debug      bool   `yaml:"debug"`      // gin debug mode + verbose logs
	EnableCORS bool   `yaml:"enableCors"` // allow cross-origin requests
}

// StoreConfig defines the certificate record store.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	DSN    string `yaml:"dsn"`    // sqlite path or ":memory:"
}

// BucketConfig defines the publication sink.
type BucketConfig struct {
	Driver  string `yaml:"driver"`  // "s3" or "file"
	Name    string `yaml:"name"`    // bucket name (s3)
	Region  string `yaml:"region"`  // AWS region (s3)
	BaseURL string `yaml:"baseUrl"` // public URL override, optional
	Dir     string `yaml:"dir"`     // output directory (file)
}

// RenderConfig defines the browser rendering step.
type RenderConfig struct {
	Profile    string `yaml:"profile"`    // "local" or "packaged"
	Timeout    string `yaml:"timeout"`    // duration string (default "30s")
	BrowserBin string `yaml:"browserBin"` // explicit executable, optional
	DateFormat string `yaml:"dateFormat"` // dateutil tokens or preset
}

// LogConfig defines logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns the configuration used when no file is given: packaged
// profile, SQLite store, filesystem publication into the working directory,
// text logs at info level. S3 publication requires explicit bucket config.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Store:  StoreConfig{Driver: StoreSQLite, DSN: "certify.db"},
		Bucket: BucketConfig{Driver: PublisherFile, Dir: "."},
		Render: RenderConfig{
			Profile:    string(certify.ProfilePackaged),
			Timeout:    "30s",
			DateFormat: "DD/MM/YYYY",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, path)
		}
		if len(data) > maxConfigSize {
			return nil, fmt.Errorf("%w: %q exceeds %d bytes", ErrConfigParse, path, maxConfigSize)
		}
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv maps environment toggles onto the config. CERTIFY_OFFLINE
// selects the fully local preset regardless of file contents.
func (c *Config) applyEnv() {
	if isTruthy(os.Getenv(offlineEnv)) {
		c.Render.Profile = string(certify.ProfileLocal)
		c.Store.Driver = StoreMemory
		c.Bucket.Driver = PublisherFile
		if c.Bucket.Dir == "" {
			c.Bucket.Dir = "."
		}
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if err := certify.LaunchProfile(c.Render.Profile).Validate(); err != nil {
		return fmt.Errorf("%w: render.profile: %v", ErrInvalidConfig, err)
	}

	if _, err := c.RenderTimeout(); err != nil {
		return err
	}

	if _, err := dateutil.ParseFormat(c.Render.DateFormat); err != nil {
		return fmt.Errorf("%w: render.dateFormat: %v", ErrInvalidConfig, err)
	}

	switch c.Store.Driver {
	case StoreSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for sqlite", ErrInvalidConfig)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	switch c.Bucket.Driver {
	case PublisherS3:
		if c.Bucket.Name == "" {
			return fmt.Errorf("%w: bucket.name is required for s3", ErrInvalidConfig)
		}
	case PublisherFile:
	default:
		return fmt.Errorf("%w: unknown bucket.driver %q", ErrInvalidConfig, c.Bucket.Driver)
	}

	return nil
}

// RenderTimeout parses the render timeout duration.
func (c *Config) RenderTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Render.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: render.timeout %q", ErrInvalidConfig, c.Render.Timeout)
	}
	return d, nil
}

// isTruthy reports whether an env toggle is set to a truthy value.
func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
