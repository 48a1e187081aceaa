// Package metadata is a small key/value table in the local database. The
// client keeps session state in it.
package metadata

import "context"

type Repository interface {
	// Get returns common.ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Clear drops every key.
	Clear(ctx context.Context) error
}
