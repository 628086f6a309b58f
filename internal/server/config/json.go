package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/flagx"
	"github.com/dmitrijs2005/foldershare/internal/timex"
)

// JsonConfig is the on-disk form of Config. Pointer fields distinguish
// "absent" from a zero value, and durations accept "30s" or nanoseconds.
type JsonConfig struct {
	HTTPAddr         *string         `json:"http_addr"`
	AdminAddr        *string         `json:"admin_addr"`
	DatabaseDSN      *string         `json:"database_dsn"`
	HMACSecret       *string         `json:"hmac_secret"`
	MetadataBackend  *string         `json:"metadata_backend"`
	BlobBackend      *string         `json:"blob_backend"`
	S3RootUser       *string         `json:"s3_root_user"`
	S3RootPassword   *string         `json:"s3_root_password"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
	S3UsePathStyle   *bool           `json:"s3_use_path_style"`
	RedisAddr        *string         `json:"redis_addr"`
	RateLimitPerHour *int            `json:"rate_limit_per_hour"`
	TrustProxy       *bool           `json:"trust_proxy_headers"`
	SweepInterval    *timex.Duration `json:"sweep_interval"`
	ReadTimeout      *timex.Duration `json:"read_timeout"`
	WriteTimeout     *timex.Duration `json:"write_timeout"`
	IdleTimeout      *timex.Duration `json:"idle_timeout"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout"`
	MaxBodyBytes     *int64          `json:"max_body_bytes"`
	LogLevel         *string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config onto config. Without the
// flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.AdminAddr, c.AdminAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.HMACSecret, c.HMACSecret)
	setString(&config.MetadataBackend, c.MetadataBackend)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.LogLevel, c.LogLevel)

	if c.S3UsePathStyle != nil {
		config.S3UsePathStyle = *c.S3UsePathStyle
	}
	if c.TrustProxy != nil {
		config.TrustProxyHeaders = *c.TrustProxy
	}
	if c.RateLimitPerHour != nil {
		config.RateLimitPerHour = *c.RateLimitPerHour
	}
	if c.MaxBodyBytes != nil {
		config.MaxBodyBytes = *c.MaxBodyBytes
	}

	setDuration(&config.SweepInterval, c.SweepInterval)
	setDuration(&config.ReadTimeout, c.ReadTimeout)
	setDuration(&config.WriteTimeout, c.WriteTimeout)
	setDuration(&config.IdleTimeout, c.IdleTimeout)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
