package config

import (
	"flag"
	"io"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string       listen address (e.g. ":8081")
//	-d string       database DSN
//	-driver string  database driver, postgres or sqlite
//	-env string     deployment environment
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("notesboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabaseURL, "d", config.DatabaseURL, "database DSN")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.Env, "env", config.Env, "deployment environment")

	return fs.Parse(args)
}
