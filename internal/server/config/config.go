// Package config handles configuration for the development backend,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the SellingCar development backend.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP API.
//   - SecretKey: HMAC secret for signing login tokens (HS256). Do not use
//     the default outside development.
//   - TokenValidity: lifetime of issued tokens.
//   - Seed: load the sample data set on start.
//   - ResourcesFile: optional YAML catalog replacing the embedded one.
type Config struct {
	EndpointAddr  string        `validate:"required"`
	SecretKey     string        `validate:"required"`
	TokenValidity time.Duration `validate:"gt=0"`
	Seed          bool
	ResourcesFile string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":4000"
	c.SecretKey = "secretKey"
	c.TokenValidity = 60 * time.Minute
	c.Seed = true
	c.ResourcesFile = ""
}

// Validate checks the struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
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
