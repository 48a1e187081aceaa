package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Document is a schemaless cloud record. Values follow encoding/json
// decoding rules (numbers arrive as float64).
type Document map[string]any

// Store is a per-user document collection. An empty userID is always
// rejected.
type Store interface {
	// Put merge-upserts doc under doc["id"].
	Put(ctx context.Context, userID string, doc Document) error
	// Get returns nil, nil when the record does not exist.
	Get(ctx context.Context, userID, recordID string) (Document, error)
	List(ctx context.Context, userID string) ([]Document, error)
	Delete(ctx context.Context, userID, recordID string) error
	Close() error
}

// UndecodableField marks a placeholder that List returns in place of a
// stored value that is not a JSON object. It holds the decode error.
const UndecodableField = "_undecodable"

const (
	rootCollection = "books"
	userCollection = "userBooks"
)

// DocumentPath is the logical address of a record.
func DocumentPath(userID, recordID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", rootCollection, userID, userCollection, recordID)
}

func collectionPrefix(userID string) string {
	return fmt.Sprintf("%s/%s/%s/", rootCollection, userID, userCollection)
}

// RecordID extracts the non-empty string id of doc.
func RecordID(doc Document) (string, bool) {
	id, ok := doc["id"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// merge overlays src onto dst (shallow) and returns dst. A nil dst is
// allocated.
func merge(dst, src Document) Document {
	if dst == nil {
		dst = make(Document, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// undecodable stands in for a corrupt record so one bad value does not
// hide the rest of the collection.
func undecodable(recordID string, err error) Document {
	return Document{"id": recordID, UndecodableField: err.Error()}
}

func validate(op, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return newError(op, userID, "", errEmptyUser)
	}
	return nil
}

func validatePut(userID string, doc Document) (string, error) {
	if err := validate(OpPut, userID); err != nil {
		return "", err
	}
	id, ok := RecordID(doc)
	if !ok {
		return "", newError(OpPut, userID, "", errMissingID)
	}
	return id, nil
}
