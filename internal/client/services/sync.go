package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/client"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/models"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/repositories/books"
	"github.com/dmitrijs2005/pocketlibrary/internal/cloud"
	"github.com/dmitrijs2005/pocketlibrary/internal/common"
	"github.com/dmitrijs2005/pocketlibrary/internal/logging"
	"github.com/dmitrijs2005/pocketlibrary/internal/netx"
	"github.com/google/uuid"
)

// SyncRepository is the single entry point the front end uses for the
// collection.
//
// Every mutation succeeds or fails on the local store alone. Mirroring to
// the cloud happens afterwards, only when online and signed in, and its
// failures are logged and otherwise swallowed: an unsynced book keeps
// SyncedToCloud=false until a later attempt succeeds. Nothing is retried
// automatically.
type SyncRepository interface {
	SearchOnline(ctx context.Context, query string) ([]models.CatalogResult, error)
	AddFromCatalogResult(ctx context.Context, r models.CatalogResult) (models.Book, error)
	AddManual(ctx context.Context, title, author string, year *int) (models.Book, error)
	Update(ctx context.Context, b models.Book) error
	Delete(ctx context.Context, id string) error
	AttachPhoto(ctx context.Context, id, path string) error
	// SyncUnsyncedToCloud returns the number of books it tried to push,
	// not the number that made it.
	SyncUnsyncedToCloud(ctx context.Context) (int, error)
	// PullFromCloud returns the number of books merged into the local store.
	// Cloud failures and malformed records only lower the count; the error is
	// reserved for the local store.
	PullFromCloud(ctx context.Context) (int, error)
	GetAllFavorites(ctx context.Context) (<-chan []models.Book, error)
	SearchFavorites(ctx context.Context, text string) (<-chan []models.Book, error)
	IsInFavorites(ctx context.Context, id string) bool
	Get(ctx context.Context, id string) (models.Book, error)
}

// SyncFailureHook is told about every swallowed cloud write failure.
type SyncFailureHook func(ctx context.Context, b models.Book, err error)

type Option func(*syncRepository)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *syncRepository) { s.now = now }
}

// WithIDGenerator replaces the UUID generator used for manual entries.
func WithIDGenerator(newID func() string) Option {
	return func(s *syncRepository) { s.newID = newID }
}

// WithSyncFailureHook registers a hook for swallowed cloud failures, e.g. to
// feed a retry queue. The default does nothing.
func WithSyncFailureHook(h SyncFailureHook) Option {
	return func(s *syncRepository) { s.onSyncFailure = h }
}

// WithCoverBaseURL sets the cover service used to derive cover URLs.
func WithCoverBaseURL(u string) Option {
	return func(s *syncRepository) { s.coverBaseURL = u }
}

type syncRepository struct {
	local   books.Repository
	remote  cloud.Store
	catalog client.Catalog
	probe   netx.Probe
	auth    Identity
	log     logging.Logger

	now           func() time.Time
	newID         func() string
	onSyncFailure SyncFailureHook
	coverBaseURL  string
}

// NewSyncRepository wires the repository. remote may be nil, in which case
// the cloud side effects are skipped as if there were no session.
func NewSyncRepository(local books.Repository, remote cloud.Store, catalog client.Catalog,
	probe netx.Probe, auth Identity, log logging.Logger, opts ...Option) SyncRepository {
	s := &syncRepository{
		local:         local,
		remote:        remote,
		catalog:       catalog,
		probe:         probe,
		auth:          auth,
		log:           log,
		now:           time.Now,
		newID:         uuid.NewString,
		onSyncFailure: func(context.Context, models.Book, error) {},
		coverBaseURL:  "https://covers.openlibrary.org",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *syncRepository) SearchOnline(ctx context.Context, query string) ([]models.CatalogResult, error) {
	if !s.probe.IsOnline() {
		return nil, common.ErrOffline
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", common.ErrValidation)
	}
	return s.catalog.Search(ctx, query, common.SearchResultLimit)
}

func (s *syncRepository) AddFromCatalogResult(ctx context.Context, r models.CatalogResult) (models.Book, error) {
	exists, err := s.local.Exists(ctx, r.Key)
	if err != nil {
		return models.Book{}, err
	}
	if exists {
		return models.Book{}, fmt.Errorf("%w: %s", common.ErrDuplicate, r.Title)
	}

	b := models.Book{
		ID:        r.Key,
		Title:     r.Title,
		Author:    r.AuthorLine(),
		Year:      r.FirstPublishYear,
		CoverURL:  r.CoverURL(s.coverBaseURL, models.CoverLarge),
		CreatedAt: s.now(),
	}
	if err := s.local.Upsert(ctx, b); err != nil {
		return models.Book{}, err
	}

	s.syncToCloud(ctx, b)
	return b, nil
}

func (s *syncRepository) AddManual(ctx context.Context, title, author string, year *int) (models.Book, error) {
	title, author = strings.TrimSpace(title), strings.TrimSpace(author)
	if err := s.validate(title, author, year); err != nil {
		return models.Book{}, err
	}

	b := models.Book{
		ID:            s.newID(),
		Title:         title,
		Author:        author,
		Year:          year,
		IsManualEntry: true,
		CreatedAt:     s.now(),
	}
	if err := s.local.Upsert(ctx, b); err != nil {
		return models.Book{}, err
	}

	s.syncToCloud(ctx, b)
	return b, nil
}

func (s *syncRepository) Update(ctx context.Context, b models.Book) error {
	b.Title, b.Author = strings.TrimSpace(b.Title), strings.TrimSpace(b.Author)
	if err := s.validate(b.Title, b.Author, b.Year); err != nil {
		return err
	}
	b.SyncedToCloud = false

	n, err := s.local.Update(ctx, b)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: book %s", common.ErrNotFound, b.ID)
	}

	s.syncToCloud(ctx, b)
	return nil
}

func (s *syncRepository) Delete(ctx context.Context, id string) error {
	if err := s.local.Delete(ctx, id); err != nil {
		return err
	}

	userID, ok := s.cloudUser(ctx)
	if !ok {
		return nil
	}
	if err := s.remote.Delete(ctx, userID, id); err != nil {
		s.log.Warn(ctx, "cloud delete failed", "op", cloud.OpDelete, "book_id", id, "error", err)
	}
	return nil
}

func (s *syncRepository) AttachPhoto(ctx context.Context, id, path string) error {
	if err := s.local.UpdatePhotoPath(ctx, id, path); err != nil {
		return err
	}

	b, err := s.local.Get(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return nil
	}

	s.syncToCloud(ctx, *b)
	return nil
}

func (s *syncRepository) SyncUnsyncedToCloud(ctx context.Context) (int, error) {
	if !s.probe.IsOnline() {
		return 0, nil
	}

	pending, err := s.local.ListUnsynced(ctx)
	if err != nil {
		return 0, err
	}

	for _, b := range pending {
		s.syncToCloud(ctx, b)
	}

	if len(pending) > 0 {
		s.log.Info(ctx, "pushed unsynced books", "attempted", len(pending))
	}
	return len(pending), nil
}

func (s *syncRepository) PullFromCloud(ctx context.Context) (int, error) {
	userID, ok := s.cloudUser(ctx)
	if !ok {
		return 0, nil
	}

	docs, err := s.remote.List(ctx, userID)
	if err != nil {
		s.log.Warn(ctx, "cloud list failed", "op", cloud.OpList, "error", err)
		return 0, nil
	}

	now := s.now()
	merged := make([]models.Book, 0, len(docs))
	for _, doc := range docs {
		snap, err := models.ParseSnapshot(doc, now)
		if err != nil {
			s.log.Warn(ctx, "skipping malformed cloud record", "record_id", doc["id"], "error", err)
			continue
		}
		merged = append(merged, snap.Book())
	}

	if err := s.local.UpsertMany(ctx, merged); err != nil {
		return 0, err
	}

	s.log.Info(ctx, "pulled books from cloud", "merged", len(merged), "skipped", len(docs)-len(merged))
	return len(merged), nil
}

func (s *syncRepository) GetAllFavorites(ctx context.Context) (<-chan []models.Book, error) {
	return s.local.WatchAll(ctx)
}

func (s *syncRepository) SearchFavorites(ctx context.Context, text string) (<-chan []models.Book, error) {
	return s.local.WatchSearch(ctx, text)
}

func (s *syncRepository) IsInFavorites(ctx context.Context, id string) bool {
	ok, err := s.local.Exists(ctx, id)
	if err != nil {
		s.log.Debug(ctx, "favorite lookup failed", "book_id", id, "error", err)
		return false
	}
	return ok
}

func (s *syncRepository) Get(ctx context.Context, id string) (models.Book, error) {
	b, err := s.local.Get(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	if b == nil {
		return models.Book{}, fmt.Errorf("%w: book %s", common.ErrNotFound, id)
	}
	return *b, nil
}

// syncToCloud is the best-effort mirror step run after a local write.
func (s *syncRepository) syncToCloud(ctx context.Context, b models.Book) {
	userID, ok := s.cloudUser(ctx)
	if !ok {
		return
	}

	if err := s.remote.Put(ctx, userID, b.Document(userID)); err != nil {
		s.log.Warn(ctx, "cloud sync failed", "op", cloud.OpPut, "book_id", b.ID, "error", err)
		s.onSyncFailure(ctx, b, err)
		return
	}

	if err := s.local.MarkSynced(ctx, b.ID); err != nil {
		s.log.Warn(ctx, "mark synced failed", "book_id", b.ID, "error", err)
	}
}

// cloudUser gates every cloud call: a store, connectivity and a session are
// all required.
func (s *syncRepository) cloudUser(ctx context.Context) (string, bool) {
	if s.remote == nil || !s.probe.IsOnline() {
		return "", false
	}
	return s.auth.CurrentUserID(ctx)
}

func (s *syncRepository) validate(title, author string, year *int) error {
	var problems []string
	if title == "" {
		problems = append(problems, "title is required")
	}
	if author == "" {
		problems = append(problems, "author is required")
	}
	if year != nil {
		if maxYear := s.now().Year() + 1; *year < 0 || *year > maxYear {
			problems = append(problems, fmt.Sprintf("year must be between 0 and %d", maxYear))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
