package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/foldershare/internal/flagx"
)

// ValueFlags lists the flags that consume the following argument. The CLI
// uses it to find positional arguments.
var ValueFlags = []string{"-a", "-D", "-t", "-c", "-config"}

// parseFlags overlays command-line flags onto cfg.
//
//	-a string     server base URL
//	-D string     data directory for the local database
//	-t duration   request timeout
//
// The secret is deliberately not accepted as a flag.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.DataDir, "D", cfg.DataDir, "data directory")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	return fs.Parse(flagx.FilterArgs(args, []string{"-a", "-D", "-t"}))
}
