package config

import "time"

// Config holds runtime settings for the PocketLibrary CLI.
//
// Units: durations are time.Duration (e.g. 3*time.Second).
type Config struct {
	DatabasePath string
	PhotosDir    string

	CatalogBaseURL    string
	CatalogSearchPath string
	CoverBaseURL      string
	CatalogTimeout    time.Duration

	// CloudBackend is one of none, bolt, s3 or postgres.
	CloudBackend string
	BoltPath     string
	PostgresDSN  string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string

	SessionSecret string
	SessionTTL    time.Duration

	OnlineCheckInterval time.Duration
	ForceOffline        bool

	LogLevel string
	LogFile  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "pocketlibrary.db"
	c.PhotosDir = "photos"
	c.CatalogBaseURL = "https://openlibrary.org"
	c.CatalogSearchPath = "/search.json"
	c.CoverBaseURL = "https://covers.openlibrary.org"
	c.CatalogTimeout = 10 * time.Second
	c.CloudBackend = "none"
	c.BoltPath = "cloud.db"
	c.S3Region = "us-east-1"
	c.SessionSecret = "pocketlibrary-dev-secret"
	c.SessionTTL = 30 * 24 * time.Hour
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), command-line flags (if present) and finally secrets from
// the environment. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	parseEnv(cfg)
	return cfg
}
