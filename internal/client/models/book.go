// Package models defines the PocketLibrary client data types: saved books,
// catalog search hits and typed views of cloud documents.
package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/pocketlibrary/internal/cloud"
)

// Book is a saved favorite, the unit of sync between the local and cloud
// stores.
type Book struct {
	// ID is the catalog key for catalog-sourced books, a UUID for manual ones.
	ID     string
	Title  string
	Author string
	// Year is nil when unknown.
	Year *int
	// CoverURL is empty when there is no cover.
	CoverURL string
	// PersonalPhotoPath is empty when no photo is attached.
	PersonalPhotoPath string
	IsManualEntry     bool
	// CreatedAt orders the collection newest-first. Stored with millisecond
	// precision.
	CreatedAt time.Time
	// SyncedToCloud is set only after a confirmed cloud write.
	SyncedToCloud bool
}

// Document renders the cloud payload for b. The cover URL is not part of
// the cloud layout.
func (b Book) Document(userID string) cloud.Document {
	doc := cloud.Document{
		"id":                b.ID,
		"title":             b.Title,
		"author":            b.Author,
		"year":              nil,
		"personalPhotoPath": nil,
		"isManualEntry":     b.IsManualEntry,
		"dateAdded":         b.CreatedAt.UnixMilli(),
		"userId":            userID,
	}
	if b.Year != nil {
		doc["year"] = *b.Year
	}
	if b.PersonalPhotoPath != "" {
		doc["personalPhotoPath"] = b.PersonalPhotoPath
	}
	return doc
}

// YearString formats Year for display, "-" when unknown.
func (b Book) YearString() string {
	if b.Year == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *b.Year)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
