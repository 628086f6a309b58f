package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// parseEnv overlays environment variables that are set and non-empty.
func parseEnv(c *Config) error {
	envString("HTTP_ADDR", &c.HTTPAddr)
	envString("ADMIN_ADDR", &c.AdminAddr)
	envString("DATABASE_DSN", &c.DatabaseDSN)
	envString("HMAC_SECRET", &c.HMACSecret)
	envString("METADATA_BACKEND", &c.MetadataBackend)
	envString("BLOB_BACKEND", &c.BlobBackend)
	envString("S3_ACCESS_KEY", &c.S3RootUser)
	envString("S3_SECRET_KEY", &c.S3RootPassword)
	envString("S3_BUCKET", &c.S3Bucket)
	envString("S3_REGION", &c.S3Region)
	envString("S3_ENDPOINT", &c.S3BaseEndpoint)
	envString("REDIS_ADDR", &c.RedisAddr)
	envString("LOG_LEVEL", &c.LogLevel)

	return errors.Join(
		envBool("S3_USE_PATH_STYLE", &c.S3UsePathStyle),
		envBool("TRUST_PROXY_HEADERS", &c.TrustProxyHeaders),
		envInt("RATE_LIMIT_PER_HOUR", &c.RateLimitPerHour),
		envInt64("MAX_BODY_BYTES", &c.MaxBodyBytes),
		envDuration("SWEEP_INTERVAL", &c.SweepInterval),
		envDuration("HTTP_READ_TIMEOUT", &c.ReadTimeout),
		envDuration("HTTP_WRITE_TIMEOUT", &c.WriteTimeout),
		envDuration("HTTP_IDLE_TIMEOUT", &c.IdleTimeout),
		envDuration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout),
	)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q (use 30s, 15m, 1h)", key, v)
	}
	*dst = d
	return nil
}
