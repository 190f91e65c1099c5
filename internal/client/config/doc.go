// Package config loads runtime configuration for the SellingCar client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// The result is validated with struct tags before use.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:4000/api",
//	  "auth_base_url": "http://localhost:4000",
//	  "request_timeout": "10s",
//	  "db_path": "/tmp/sellingcar.db",
//	  "resources_file": "",
//	  "log_level": "info"
//	}
package config
