package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/sellingcar/internal/flagx"
	"github.com/dmitrijs2005/sellingcar/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config field untouched.
type JsonConfig struct {
	APIBaseURL     *string         `json:"api_base_url"`
	AuthBaseURL    *string         `json:"auth_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	DBPath         *string         `json:"db_path"`
	ResourcesFile  *string         `json:"resources_file"`
	LogLevel       *string         `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c or -config, if any.
func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFile(args)
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	set(&cfg.APIBaseURL, jc.APIBaseURL)
	set(&cfg.AuthBaseURL, jc.AuthBaseURL)
	set(&cfg.DBPath, jc.DBPath)
	set(&cfg.ResourcesFile, jc.ResourcesFile)
	set(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
