package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pocketlibrary/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// os.Args is filtered with flagx.Filter first so the JSON loader's -c flag
// does not trip this FlagSet.
func parseFlags(cfg *Config) {
	args := flagx.Filter(os.Args[1:],
		[]string{"-d", "-p", "-u", "-b", "-i", "-l"},
		[]string{"-o", "-offline"},
	)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	fs.StringVar(&cfg.PhotosDir, "p", cfg.PhotosDir, "directory for imported photos")
	fs.StringVar(&cfg.CatalogBaseURL, "u", cfg.CatalogBaseURL, "catalog base URL")
	fs.StringVar(&cfg.CloudBackend, "b", cfg.CloudBackend, "cloud backend: none, bolt, s3, postgres")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.ForceOffline, "o", cfg.ForceOffline, "offline mode")
	fs.BoolVar(&cfg.ForceOffline, "offline", cfg.ForceOffline, "offline mode")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
