// Package client contains the client-side building blocks that talk to the
// outside world or bootstrap local state.
//
// # Overview
//
//  1. CatalogClient searches the public book catalog over HTTP and maps the
//     JSON documents onto models.CatalogResult. It performs no connectivity
//     check of its own and never persists anything.
//  2. InitDatabase opens the local SQLite file, applies the embedded goose
//     migrations and returns the handle; NewRepositories wires the
//     repositories on top of it.
//
// # Error Handling
//
// Catalog failures (transport errors and non-2xx statuses) are returned as
// *CatalogSearchError, whose message is ready to show to a user.
//
// See Also
//
//   - Catalog:    CatalogClient, CatalogSearchError
//   - DB helpers: InitDatabase, RunMigrations, NewRepositories
package client
