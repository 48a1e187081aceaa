package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/pocketlibrary/internal/cloud"
)

// ErrMalformedSnapshot marks a cloud document that cannot be turned into a
// Book.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Snapshot is the typed view of a cloud document. Optional fields carry
// explicit defaults after parsing.
type Snapshot struct {
	ID                string
	Title             string
	Author            string
	Year              *int
	PersonalPhotoPath string
	IsManualEntry     bool
	DateAdded         time.Time
	UserID            string
}

// ParseSnapshot validates doc field by field. A placeholder for an
// undecodable record, a missing or non-string id and wrongly typed fields
// are fatal; absent optional fields get defaults
// (empty strings, nil year, false, now for dateAdded).
func ParseSnapshot(doc cloud.Document, now time.Time) (Snapshot, error) {
	if reason, ok := doc[cloud.UndecodableField]; ok {
		return Snapshot{}, fmt.Errorf("%w: undecodable record: %v", ErrMalformedSnapshot, reason)
	}

	id, ok := cloud.RecordID(doc)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: missing id", ErrMalformedSnapshot)
	}

	s := Snapshot{ID: id, DateAdded: now}
	var err error

	if s.Title, err = optString(doc, "title"); err != nil {
		return Snapshot{}, err
	}
	if s.Author, err = optString(doc, "author"); err != nil {
		return Snapshot{}, err
	}
	if s.PersonalPhotoPath, err = optString(doc, "personalPhotoPath"); err != nil {
		return Snapshot{}, err
	}
	if s.UserID, err = optString(doc, "userId"); err != nil {
		return Snapshot{}, err
	}

	if v, ok := doc["isManualEntry"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return Snapshot{}, fmt.Errorf("%w: isManualEntry is %T", ErrMalformedSnapshot, v)
		}
		s.IsManualEntry = b
	}

	if v, ok := doc["year"]; ok && v != nil {
		y, err := toInt64(v)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: year: %v", ErrMalformedSnapshot, err)
		}
		year := int(y)
		s.Year = &year
	}

	if v, ok := doc["dateAdded"]; ok && v != nil {
		ms, err := toInt64(v)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: dateAdded: %v", ErrMalformedSnapshot, err)
		}
		s.DateAdded = time.UnixMilli(ms)
	}

	return s, nil
}

// Book converts s into a synced Book. Cloud documents carry no cover URL.
func (s Snapshot) Book() Book {
	return Book{
		ID:                s.ID,
		Title:             s.Title,
		Author:            s.Author,
		Year:              s.Year,
		PersonalPhotoPath: s.PersonalPhotoPath,
		IsManualEntry:     s.IsManualEntry,
		CreatedAt:         s.DateAdded,
		SyncedToCloud:     true,
	}
}

func optString(doc cloud.Document, key string) (string, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T", ErrMalformedSnapshot, key, v)
	}
	return s, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
