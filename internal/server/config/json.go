package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/sellingcar/internal/flagx"
	"github.com/dmitrijs2005/sellingcar/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. TokenValidity accepts "1h" as well as nanoseconds.
type JsonConfig struct {
	EndpointAddr  *string         `json:"endpoint_addr"`
	SecretKey     *string         `json:"secret_key"`
	TokenValidity *timex.Duration `json:"token_validity"`
	Seed          *bool           `json:"seed"`
	ResourcesFile *string         `json:"resources_file"`
}

// parseJson overlays config with the JSON file named by -c or -config.
// Without such a flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFile(args)
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.TokenValidity != nil {
		config.TokenValidity = c.TokenValidity.Duration
	}
	if c.Seed != nil {
		config.Seed = *c.Seed
	}
	if c.ResourcesFile != nil {
		config.ResourcesFile = *c.ResourcesFile
	}
	return nil
}
