package books

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/migrations"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/models"
	"github.com/dmitrijs2005/pocketlibrary/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "."))

	return NewSQLiteRepository(db, logging.Nop()), db
}

var base = time.UnixMilli(1_700_000_000_000)

func book(id, title, author string, age time.Duration) models.Book {
	return models.Book{ID: id, Title: title, Author: author, CreatedAt: base.Add(-age)}
}

func ids(bs []models.Book) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}

func TestUpsert_IsIdempotentAndReplaces(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	b := book("OL1W", "Dune", "Frank Herbert", 0)
	b.Year = models.IntPtr(1965)
	b.CoverURL = "https://covers/b/id/1-L.jpg"
	require.NoError(t, r.Upsert(ctx, b))

	b.Title = "Dune (1st ed.)"
	b.SyncedToCloud = true
	require.NoError(t, r.Upsert(ctx, b))
	require.NoError(t, r.Upsert(ctx, b))

	all, err := r.listAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, "Dune (1st ed.)", got.Title)
	assert.Equal(t, 1965, *got.Year)
	assert.Equal(t, b.CoverURL, got.CoverURL)
	assert.True(t, got.SyncedToCloud)
	assert.True(t, got.CreatedAt.Equal(b.CreatedAt))
}

func TestGetAndExists(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	got, err := r.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := r.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Upsert(ctx, book("m1", "Notes", "Me", 0)))

	got, err = r.Get(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Year)
	assert.Empty(t, got.CoverURL)
	assert.Empty(t, got.PersonalPhotoPath)

	ok, err = r.Exists(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdate(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	n, err := r.Update(ctx, book("nope", "x", "y", 0))
	require.NoError(t, err)
	assert.Zero(t, n)

	orig := book("a", "Dune", "Herbert", time.Hour)
	orig.SyncedToCloud = true
	require.NoError(t, r.Upsert(ctx, orig))

	changed := orig
	changed.Title = "Dune Messiah"
	changed.Year = models.IntPtr(1969)
	changed.SyncedToCloud = false
	changed.CreatedAt = base.Add(time.Hour)

	n, err = r.Update(ctx, changed)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, 1969, *got.Year)
	assert.False(t, got.SyncedToCloud)
	assert.True(t, got.CreatedAt.Equal(orig.CreatedAt), "created_at is not rewritten")
}

func TestDelete(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, book("a", "A", "A", 0)))
	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnsyncedAndMarkSynced(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.UpsertMany(ctx, []models.Book{
		book("a", "A", "A", 2*time.Minute),
		book("b", "B", "B", time.Minute),
	}))

	unsynced, err := r.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(unsynced))

	require.NoError(t, r.MarkSynced(ctx, "a"))
	require.NoError(t, r.MarkSynced(ctx, "a"))
	require.NoError(t, r.MarkSynced(ctx, "unknown"))

	unsynced, err = r.ListUnsynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(unsynced))
}

func TestUpdatePhotoPath_ClearsSyncedFlag(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	b := book("a", "A", "A", 0)
	b.SyncedToCloud = true
	require.NoError(t, r.Upsert(ctx, b))

	require.NoError(t, r.UpdatePhotoPath(ctx, "a", "/photos/x.jpg"))
	require.NoError(t, r.UpdatePhotoPath(ctx, "a", "/photos/x.jpg"))
	require.NoError(t, r.UpdatePhotoPath(ctx, "ghost", "/photos/y.jpg"))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "/photos/x.jpg", got.PersonalPhotoPath)
	assert.False(t, got.SyncedToCloud)
}

func TestSearch(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, book("dune", "Dune", "Herbert", time.Hour)))
	require.NoError(t, r.Upsert(ctx, book("found", "Foundation", "Asimov", 0)))
	require.NoError(t, r.Upsert(ctx, book("pct", "100% Pure", "Someone_Else", 2*time.Hour)))

	tests := []struct {
		text string
		want []string
	}{
		{"herb", []string{"dune"}},
		{"HERB", []string{"dune"}},
		{"found", []string{"found"}},
		{"o", []string{"found", "pct"}},
		{"%", []string{"pct"}},
		{"_", []string{"pct"}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := r.search(ctx, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestUpsertMany_RollsBackOnError(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	ctxCanceled, cancel := context.WithCancel(ctx)
	cancel()

	err := r.UpsertMany(ctxCanceled, []models.Book{book("a", "A", "A", 0)})
	require.Error(t, err)

	all, err := r.listAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, r.UpsertMany(ctx, nil))
}

func TestClosedDB_Errors(t *testing.T) {
	r, db := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, db.Close())

	assert.ErrorContains(t, r.Upsert(ctx, book("a", "A", "A", 0)), "failed to upsert book a")
	_, err := r.Update(ctx, book("a", "A", "A", 0))
	assert.ErrorContains(t, err, "failed to update book a")
	_, err = r.Get(ctx, "a")
	assert.ErrorContains(t, err, "failed to get book a")
	_, err = r.Exists(ctx, "a")
	assert.Error(t, err)
	_, err = r.ListUnsynced(ctx)
	assert.ErrorContains(t, err, "failed to select books")
	_, err = r.WatchAll(ctx)
	assert.Error(t, err)
	assert.Zero(t, r.changes.count())
}
