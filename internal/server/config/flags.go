package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/sellingcar/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":4000")
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-seed bool  load sample data
//	-r string   resources YAML file
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-seed", "-r"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidity.Minutes()), "token validity (in minutes)")
	fs.BoolVar(&config.Seed, "seed", config.Seed, "load sample data")
	fs.StringVar(&config.ResourcesFile, "r", config.ResourcesFile, "resources YAML file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.TokenValidity = time.Duration(*tokenValidity) * time.Minute
	return nil
}
