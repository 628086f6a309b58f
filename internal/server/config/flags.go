package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/foldershare/internal/flagx"
)

var serverFlags = []string{"-a", "-m", "-d", "-s", "-k", "-o", "-u", "-p", "-b", "-g", "-e", "-r", "-l", "-w", "-L"}

// parseFlags overlays command-line flags onto config.
//
//	-a string     public HTTP address (":8080")
//	-m string     admin address for /metrics and health probes (":9090")
//	-d string     PostgreSQL DSN
//	-s string     HMAC secret
//	-k string     metadata backend: postgres | memory
//	-o string     blob backend: s3 | memory
//	-u, -p        S3 access key and secret key
//	-b, -g, -e    S3 bucket, region and base endpoint
//	-r string     Redis address; empty disables rate limiting
//	-l int        publishes per client address per hour
//	-w duration   sweeper interval; 0 disables it
//	-L string     log level
//
// Arguments not in the list above are ignored so other components may own
// them.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to serve the API on")
	fs.StringVar(&config.AdminAddr, "m", config.AdminAddr, "address and port for metrics and health")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.HMACSecret, "s", config.HMACSecret, "HMAC secret")
	fs.StringVar(&config.MetadataBackend, "k", config.MetadataBackend, "metadata backend (postgres|memory)")
	fs.StringVar(&config.BlobBackend, "o", config.BlobBackend, "blob backend (s3|memory)")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.IntVar(&config.RateLimitPerHour, "l", config.RateLimitPerHour, "publishes per client per hour")
	fs.DurationVar(&config.SweepInterval, "w", config.SweepInterval, "expired share sweep interval")
	fs.StringVar(&config.LogLevel, "L", config.LogLevel, "log level (debug|info|warn|error)")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
