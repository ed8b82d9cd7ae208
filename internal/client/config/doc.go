// Package config loads runtime configuration for the fieldsync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend server
//	-d string   path to the local drafts database
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_url": "https://ops.example.com",
//	  "database_path": "fieldsync.db",
//	  "online_check_interval": "3s",
//	  "upload_mode": "s3",
//	  "media_endpoint": "https://minio.local",
//	  "media_bucket": "field-media"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
