package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/sellingcar/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   data API base URL
//	-l string   auth (login) base URL
//	-t int      request timeout in seconds
//	-d string   local database path
//	-r string   resources YAML file
//	-v string   log level
//
// args is filtered with flagx.FilterArgs so flags owned by other loaders
// (-c, -config) do not interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-l", "-t", "-d", "-r", "-v"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "data API base URL")
	fs.StringVar(&cfg.AuthBaseURL, "l", cfg.AuthBaseURL, "auth base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.ResourcesFile, "r", cfg.ResourcesFile, "resources YAML file")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
