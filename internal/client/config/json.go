package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pocketlibrary/internal/flagx"
	"github.com/dmitrijs2005/pocketlibrary/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from the zero value, so a partial file only
// overrides what it names.
type JsonConfig struct {
	DatabasePath        *string         `json:"database_path"`
	PhotosDir           *string         `json:"photos_dir"`
	CatalogBaseURL      *string         `json:"catalog_base_url"`
	CatalogSearchPath   *string         `json:"catalog_search_path"`
	CoverBaseURL        *string         `json:"cover_base_url"`
	CatalogTimeout      *timex.Duration `json:"catalog_timeout"`
	CloudBackend        *string         `json:"cloud_backend"`
	BoltPath            *string         `json:"bolt_path"`
	PostgresDSN         *string         `json:"postgres_dsn"`
	S3Bucket            *string         `json:"s3_bucket"`
	S3Region            *string         `json:"s3_region"`
	S3Endpoint          *string         `json:"s3_endpoint"`
	SessionTTL          *timex.Duration `json:"session_ttl"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	ForceOffline        *bool           `json:"force_offline"`
	LogLevel            *string         `json:"log_level"`
	LogFile             *string         `json:"log_file"`
}

// parseJson overlays Config with values loaded from a JSON file located via
// flagx.JsonConfigFlags. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.PhotosDir, jc.PhotosDir)
	setString(&cfg.CatalogBaseURL, jc.CatalogBaseURL)
	setString(&cfg.CatalogSearchPath, jc.CatalogSearchPath)
	setString(&cfg.CoverBaseURL, jc.CoverBaseURL)
	setString(&cfg.CloudBackend, jc.CloudBackend)
	setString(&cfg.BoltPath, jc.BoltPath)
	setString(&cfg.PostgresDSN, jc.PostgresDSN)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFile, jc.LogFile)

	if jc.CatalogTimeout != nil {
		cfg.CatalogTimeout = jc.CatalogTimeout.Duration
	}
	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.ForceOffline != nil {
		cfg.ForceOffline = *jc.ForceOffline
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
