package config

import (
	"fmt"
	"os"
	"time"
)

func parseEnv(c *Config) error {
	if v := os.Getenv("FOLDERSHARE_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("HMAC_SECRET"); v != "" {
		c.HMACSecret = v
	}
	if v := os.Getenv("FOLDERSHARE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("FOLDERSHARE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FOLDERSHARE_TIMEOUT: invalid duration %q", v)
		}
		c.RequestTimeout = d
	}
	return nil
}
