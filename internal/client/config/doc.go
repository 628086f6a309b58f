// Package config loads runtime configuration for the folder share client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment: FOLDERSHARE_SERVER_URL, HMAC_SECRET, FOLDERSHARE_DATA_DIR,
//     FOLDERSHARE_TIMEOUT.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string     server base URL
//	-D string     local data directory
//	-t duration   request timeout
//
// # JSON schema
//
// Durations use timex.Duration, so "15s" and integer nanoseconds both work:
//
//	{
//	  "server_url": "https://share.example.com",
//	  "data_dir": "/home/me/.foldershare",
//	  "request_timeout": "15s"
//	}
package config
