// Package cli provides the interactive PocketLibrary command-line client.
//
// It wires configuration, the local database, the cloud backend and the
// catalog client into a SyncRepository and drives it from a REPL. Typical
// flow: probe connectivity, push unsynced books and pull the cloud copy when
// a session exists, start a background connectivity watcher, and execute user
// commands.
//
// Key features:
//   - Search the online catalog and save results
//   - Add books by hand, edit, delete, attach photos
//   - List / filter saved books
//   - Sessions by user id or token, sync and pull
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
