package config

import (
	"strings"

	"github.com/dmitrijs2005/pocketlibrary/internal/common"
	"github.com/spf13/viper"
)

// parseEnv overlays secrets that should not live in a JSON file or on the
// command line. Unset variables leave the current value alone.
func parseEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(strings.TrimSuffix(common.EnvPrefix, "_"))
	v.AutomaticEnv()

	overlay := func(dst *string, key string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}

	overlay(&cfg.S3AccessKey, "s3_access_key")
	overlay(&cfg.S3SecretKey, "s3_secret_key")
	overlay(&cfg.PostgresDSN, "postgres_dsn")
	overlay(&cfg.SessionSecret, "session_secret")
}
