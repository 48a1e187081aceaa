package books

import (
	"context"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/models"
)

// Repository describes the local book store. Lists are ordered newest first.
type Repository interface {
	// Upsert inserts b or replaces the row with the same ID.
	Upsert(ctx context.Context, b models.Book) error

	// UpsertMany upserts all books in a single transaction.
	UpsertMany(ctx context.Context, bs []models.Book) error

	// Update rewrites the mutable fields of an existing row and reports the
	// number of rows affected (0 when the ID is unknown). CreatedAt is kept.
	Update(ctx context.Context, b models.Book) (int64, error)

	Delete(ctx context.Context, id string) error

	// Get returns nil, nil when no row has the id.
	Get(ctx context.Context, id string) (*models.Book, error)

	Exists(ctx context.Context, id string) (bool, error)

	ListUnsynced(ctx context.Context) ([]models.Book, error)

	// MarkSynced flags one row as confirmed in the cloud. Idempotent.
	MarkSynced(ctx context.Context, id string) error

	// UpdatePhotoPath sets the photo path and clears the synced flag.
	// Idempotent; unknown ids are ignored.
	UpdatePhotoPath(ctx context.Context, id, path string) error

	// WatchAll streams the whole collection. The channel is closed once ctx
	// is done.
	WatchAll(ctx context.Context) (<-chan []models.Book, error)

	// WatchSearch streams books whose title or author contains text,
	// case-insensitively. Blank text behaves like WatchAll.
	WatchSearch(ctx context.Context, text string) (<-chan []models.Book, error)
}
