package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the SellingCar client.
//
// Fields:
//   - APIBaseURL: base URL of the REST data API (resource paths are appended).
//   - AuthBaseURL: base URL of the login route, which lives outside the API.
//   - RequestTimeout: per-request HTTP timeout.
//   - DBPath: local SQLite file keeping the login session; empty selects the
//     per-user data directory.
//   - ResourcesFile: optional YAML catalog replacing the embedded one.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL     string        `validate:"required,url"`
	AuthBaseURL    string        `validate:"required,url"`
	RequestTimeout time.Duration `validate:"gt=0"`
	DBPath         string
	ResourcesFile  string
	LogLevel       string `validate:"oneof=debug info warn error"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:4000/api"
	c.AuthBaseURL = "http://localhost:4000"
	c.RequestTimeout = 10 * time.Second
	c.DBPath = ""
	c.ResourcesFile = ""
	c.LogLevel = "warn"
}

// Validate checks the struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
