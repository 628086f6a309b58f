package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/foldershare/internal/flagx"
	"github.com/dmitrijs2005/foldershare/internal/timex"
)

// JsonConfig is the on-disk form of Config.
type JsonConfig struct {
	ServerURL      string          `json:"server_url"`
	HMACSecret     string          `json:"hmac_secret"`
	DataDir        string          `json:"data_dir"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.HMACSecret != "" {
		cfg.HMACSecret = jc.HMACSecret
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
