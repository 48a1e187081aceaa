package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/client"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/models"
	"github.com/dmitrijs2005/pocketlibrary/internal/cloud"
	"github.com/dmitrijs2005/pocketlibrary/internal/logging"
	"github.com/dmitrijs2005/pocketlibrary/internal/netx"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeCatalog struct {
	calls   int
	results []models.CatalogResult
	err     error
	lastQ   string
	lastLim int
}

func (f *fakeCatalog) Search(_ context.Context, q string, limit int) ([]models.CatalogResult, error) {
	f.calls++
	f.lastQ, f.lastLim = q, limit
	return f.results, f.err
}

type fakeIdentity struct{ userID string }

func (f fakeIdentity) CurrentUserID(context.Context) (string, bool) {
	return f.userID, f.userID != ""
}

// fakeCloud is an in-memory cloud.Store that can be told to fail.
type fakeCloud struct {
	mu      sync.Mutex
	docs    map[string]map[string]cloud.Document
	fail    error
	puts    int
	deletes int
	listed  []cloud.Document
}

var errCloudDown = &cloud.CloudSyncError{Op: cloud.OpPut, Err: errors.New("unavailable")}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{docs: map[string]map[string]cloud.Document{}}
}

func (f *fakeCloud) Put(_ context.Context, userID string, doc cloud.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.fail != nil {
		return f.fail
	}
	id, _ := cloud.RecordID(doc)
	if f.docs[userID] == nil {
		f.docs[userID] = map[string]cloud.Document{}
	}
	f.docs[userID][id] = doc
	return nil
}

func (f *fakeCloud) Get(_ context.Context, userID, id string) (cloud.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	return f.docs[userID][id], nil
}

func (f *fakeCloud) List(_ context.Context, userID string) ([]cloud.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if f.listed != nil {
		return f.listed, nil
	}
	out := make([]cloud.Document, 0, len(f.docs[userID]))
	for _, d := range f.docs[userID] {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeCloud) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.fail != nil {
		return f.fail
	}
	delete(f.docs[userID], id)
	return nil
}

func (f *fakeCloud) Close() error { return nil }

// ---- fixture ----

type fixture struct {
	repo    SyncRepository
	repos   *client.Repositories
	catalog *fakeCatalog
	cloud   *fakeCloud
	failed  []string
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, online bool, userID string) *fixture {
	t.Helper()

	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "lib.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		repos:   client.NewRepositories(db, logging.Nop()),
		catalog: &fakeCatalog{},
		cloud:   newFakeCloud(),
	}

	n := 0
	clock := func() time.Time {
		n++
		return fixedNow.Add(time.Duration(n) * time.Second)
	}
	seq := 0
	ids := func() string {
		seq++
		return "manual-" + string(rune('0'+seq))
	}

	f.repo = NewSyncRepository(
		f.repos.Books, f.cloud, f.catalog, netx.StaticProbe(online), fakeIdentity{userID: userID}, logging.Nop(),
		WithClock(clock),
		WithIDGenerator(ids),
		WithCoverBaseURL("https://covers.test"),
		WithSyncFailureHook(func(_ context.Context, b models.Book, _ error) { f.failed = append(f.failed, b.ID) }),
	)
	return f
}

func (f *fixture) stored(t *testing.T, id string) *models.Book {
	t.Helper()
	b, err := f.repos.Books.Get(context.Background(), id)
	require.NoError(t, err)
	return b
}

type alwaysOnline struct{}

func (alwaysOnline) IsOnline() bool { return true }

func nopLog() logging.Logger { return logging.Nop() }
