package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/fieldworks/fieldsync/internal/flagx"
	"github.com/fieldworks/fieldsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointURL   string         `json:"server_endpoint_url"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	UploadMode          string         `json:"upload_mode"`
	MediaEndpoint       string         `json:"media_endpoint"`
	MediaRegion         string         `json:"media_region"`
	MediaBucket         string         `json:"media_bucket"`
	MediaAccessKey      string         `json:"media_access_key"`
	MediaSecretKey      string         `json:"media_secret_key"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c / -config flags via
// flagx.JsonConfigFlags(); when empty, no JSON is loaded. Read or
// unmarshal errors panic (caller should recover if desired). Empty JSON
// fields leave the current value untouched, so a partial file only
// overrides what it names.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlayString(&cfg.ServerEndpointURL, jc.ServerEndpointURL)
	overlayString(&cfg.DatabasePath, jc.DatabasePath)
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	overlayString(&cfg.UploadMode, jc.UploadMode)
	overlayString(&cfg.MediaEndpoint, jc.MediaEndpoint)
	overlayString(&cfg.MediaRegion, jc.MediaRegion)
	overlayString(&cfg.MediaBucket, jc.MediaBucket)
	overlayString(&cfg.MediaAccessKey, jc.MediaAccessKey)
	overlayString(&cfg.MediaSecretKey, jc.MediaSecretKey)
}

func overlayString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
