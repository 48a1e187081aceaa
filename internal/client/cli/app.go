package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/client"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/config"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/models"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/services"
	"github.com/dmitrijs2005/pocketlibrary/internal/cloud"
	"github.com/dmitrijs2005/pocketlibrary/internal/filex"
	"github.com/dmitrijs2005/pocketlibrary/internal/logging"
	"github.com/dmitrijs2005/pocketlibrary/internal/netx"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config    *config.Config
	repo      services.SyncRepository
	session   services.SessionService
	probe     netx.Probe
	photosDir string
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer
	closers   []func() error

	mu   sync.Mutex
	mode Mode

	// results holds the hits of the last search, numbered from 1 for "add".
	results []models.CatalogResult
}

// NewApp opens the local database, the configured cloud backend and the
// catalog client, and wires them into a SyncRepository.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	closers := []func() error{db.Close}

	fail := func(err error) (*App, error) {
		closeAll(closers)
		return nil, err
	}

	photosDir, err := filex.EnsureDir(c.PhotosDir)
	if err != nil {
		return fail(err)
	}

	remote, err := cloud.Open(ctx, cloud.Options{
		Backend:     c.CloudBackend,
		BoltPath:    c.BoltPath,
		PostgresDSN: c.PostgresDSN,
		S3: cloud.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3Endpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		},
	})
	if err != nil {
		return fail(err)
	}
	if remote != nil {
		closers = append(closers, remote.Close)
	}

	return newApp(c, db, remote, photosDir, log, closers), nil
}

func newApp(c *config.Config, db *sql.DB, remote cloud.Store, photosDir string, log logging.Logger, closers []func() error) *App {
	repos := client.NewRepositories(db, log)
	catalog := client.NewCatalogClient(c.CatalogBaseURL, c.CatalogSearchPath, c.CatalogTimeout, log)
	session := services.NewSessionService(repos.Metadata, []byte(c.SessionSecret), c.SessionTTL)

	var probe netx.Probe = netx.NewInterfaceProbe()
	if c.ForceOffline {
		probe = netx.StaticProbe(false)
	}

	repo := services.NewSyncRepository(repos.Books, remote, catalog, probe, session, log,
		services.WithCoverBaseURL(c.CoverBaseURL))

	return &App{
		config:    c,
		repo:      repo,
		session:   session,
		probe:     probe,
		photosDir: photosDir,
		log:       log,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		closers:   closers,
	}
}

// Close releases the cloud store and the local database, in reverse order
// of opening.
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode reports whether the mode actually changed.
func (a *App) setMode(ctx context.Context, mode Mode) bool {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", mode)
	}
	return changed
}

// checkConnectivity re-probes the network. Coming back online pushes
// whatever was saved while offline.
func (a *App) checkConnectivity(ctx context.Context) {
	mode := ModeOffline
	if a.probe.IsOnline() {
		mode = ModeOnline
	}

	prev := a.Mode()
	if !a.setMode(ctx, mode) || prev != ModeOffline || mode != ModeOnline {
		return
	}

	if _, err := a.repo.SyncUnsyncedToCloud(ctx); err != nil {
		a.log.Warn(ctx, "push after reconnect failed", "error", err)
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkConnectivity(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// syncSession pushes local changes first and then merges the cloud copy, so
// edits made offline are not overwritten by an older cloud version.
func (a *App) syncSession(ctx context.Context) {
	if _, err := a.repo.SyncUnsyncedToCloud(ctx); err != nil {
		a.log.Warn(ctx, "push failed", "error", err)
	}
	if _, err := a.repo.PullFromCloud(ctx); err != nil {
		a.log.Warn(ctx, "pull failed", "error", err)
	}
}
