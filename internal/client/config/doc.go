// Package config loads runtime configuration for the PocketLibrary CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c / -config or the
//     POCKETLIBRARY_CONFIG environment variable.
//  3. Command-line flags (see parseFlags).
//  4. POCKETLIBRARY_* environment variables for secrets (see parseEnv).
//
// Supported flags
//
//	-d string   path of the local SQLite database
//	-p string   directory for imported photos
//	-u string   catalog base URL
//	-b string   cloud backend: none, bolt, s3, postgres
//	-i int      online status check interval (seconds)
//	-l string   log level: debug, info, warn, error
//	-o          start in offline mode (never touch the network)
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "database_path": "pocketlibrary.db",
//	  "catalog_base_url": "https://openlibrary.org",
//	  "cloud_backend": "s3",
//	  "s3_bucket": "pocketlibrary",
//	  "online_check_interval": "3s"
//	}
//
// Environment
//
//	POCKETLIBRARY_S3_ACCESS_KEY, POCKETLIBRARY_S3_SECRET_KEY,
//	POCKETLIBRARY_POSTGRES_DSN, POCKETLIBRARY_SESSION_SECRET
package config
