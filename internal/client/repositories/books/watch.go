package books

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/models"
)

func (r *SQLiteRepository) WatchAll(ctx context.Context) (<-chan []models.Book, error) {
	return r.watch(ctx, r.listAll)
}

func (r *SQLiteRepository) WatchSearch(ctx context.Context, text string) (<-chan []models.Book, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return r.WatchAll(ctx)
	}
	return r.watch(ctx, func(ctx context.Context) ([]models.Book, error) {
		return r.search(ctx, text)
	})
}

// watch subscribes before the first load so no commit between the two is
// missed. An error on the first load is returned to the caller; later reload
// errors are logged and the stream waits for the next change.
func (r *SQLiteRepository) watch(ctx context.Context, load func(context.Context) ([]models.Book, error)) (<-chan []models.Book, error) {
	changed, unsubscribe := r.changes.subscribe()

	snapshot, err := load(ctx)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	out := make(chan []models.Book)

	go func() {
		defer close(out)
		defer unsubscribe()

		pending := true
		for {
			if pending {
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}

			next, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.log.Warn(ctx, "reload of book stream failed", "error", err)
				pending = false
				continue
			}
			snapshot, pending = next, true
		}
	}()

	return out, nil
}
