// Package common defines shared constants and sentinel errors used across
// the PocketLibrary client, its local store and the cloud backends. Callers
// should use errors.Is to match these values; most of them arrive wrapped
// with detail via fmt.Errorf("%w: ...").
package common

import "errors"

var (
	// Input errors. Never retried.
	ErrValidation = errors.New("validation error")

	// Network was required but the device is offline.
	ErrOffline = errors.New("no network connection")

	// The book is already in favorites.
	ErrDuplicate = errors.New("book already in favorites")

	// Repository-level lookup/update miss.
	ErrNotFound = errors.New("not found")

	// Cloud write/read/delete failed. Never surfaced by local-first mutations.
	ErrCloudSync = errors.New("cloud sync failed")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
