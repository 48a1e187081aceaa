// Package books is the local, durable store of saved books.
//
// The store is the source of truth for the collection. Every write is
// committed to SQLite before it returns, whatever the network state.
// Reads come in two shapes: point lookups (Get, Exists, ListUnsynced)
// and reactive streams (WatchAll, WatchSearch) that emit the current
// collection right away and a fresh copy after every committed change.
//
// Writers are serialized by the database handle (the client opens SQLite
// with a single connection), so callers add no locking of their own.
//
// Typical usage:
//
//	repo := books.NewSQLiteRepository(db, log)
//	_ = repo.Upsert(ctx, book)
//	stream, _ := repo.WatchSearch(ctx, "herb")
//	for list := range stream {
//	    render(list)
//	}
package books
