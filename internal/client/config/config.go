package config

import "time"

// Config holds runtime settings for the fieldsync CLI.
//
// Units: OnlineCheckInterval is a time.Duration (e.g., 3*time.Second).
type Config struct {
	// ServerEndpointURL is the base URL of the field-operations backend,
	// e.g. "https://ops.example.com".
	ServerEndpointURL string

	// DatabasePath is the SQLite file holding drafts and session metadata.
	DatabasePath string

	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration

	// UploadMode selects the attachment uploader: "api" sends batches
	// through the backend, "s3" presigns and PUTs directly to object
	// storage using the Media* settings.
	UploadMode string

	MediaEndpoint  string
	MediaRegion    string
	MediaBucket    string
	MediaAccessKey string
	MediaSecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointURL = "http://127.0.0.1:8080"
	c.DatabasePath = "fieldsync.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.UploadMode = "api"
	c.MediaRegion = "us-east-1"
	c.MediaBucket = "field-media"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
