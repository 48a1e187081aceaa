package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketRoot = []byte(rootCollection)
	bucketUser = []byte(userCollection)
)

// BoltStore nests buckets as books/{userID}/userBooks and stores one JSON
// value per record id.
type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, newError(OpOpen, "", "", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, newError(OpOpen, "", "", fmt.Errorf("failed to open bolt db: %w", err))
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRoot)
		return err
	})
	if err != nil {
		db.Close()
		return nil, newError(OpOpen, "", "", err)
	}

	return &BoltStore{db: db}, nil
}

// records returns the userBooks bucket of userID, or nil when it does not
// exist in a read-only tx.
func records(tx *bolt.Tx, userID string, create bool) (*bolt.Bucket, error) {
	root := tx.Bucket(bucketRoot)
	if root == nil {
		return nil, nil
	}
	if !create {
		user := root.Bucket([]byte(userID))
		if user == nil {
			return nil, nil
		}
		return user.Bucket(bucketUser), nil
	}
	user, err := root.CreateBucketIfNotExists([]byte(userID))
	if err != nil {
		return nil, err
	}
	return user.CreateBucketIfNotExists(bucketUser)
}

func (s *BoltStore) Put(ctx context.Context, userID string, doc Document) error {
	id, err := validatePut(userID, doc)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := records(tx, userID, true)
		if err != nil {
			return err
		}

		// a corrupt value is replaced rather than merged
		var current Document
		if data := b.Get([]byte(id)); data != nil {
			current, _ = decode(data)
		}

		data, err := json.Marshal(merge(current, doc))
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return newError(OpPut, userID, id, err)
	}
	return nil
}

func (s *BoltStore) Get(ctx context.Context, userID, recordID string) (Document, error) {
	if err := validate(OpGet, userID); err != nil {
		return nil, err
	}

	var doc Document
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := records(tx, userID, false)
		if err != nil || b == nil {
			return err
		}
		data := b.Get([]byte(recordID))
		if data == nil {
			return nil
		}
		doc, err = decode(data)
		return err
	})
	if err != nil {
		return nil, newError(OpGet, userID, recordID, err)
	}
	return doc, nil
}

func (s *BoltStore) List(ctx context.Context, userID string) ([]Document, error) {
	if err := validate(OpList, userID); err != nil {
		return nil, err
	}

	docs := make([]Document, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := records(tx, userID, false)
		if err != nil || b == nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			doc, err := decode(v)
			if err != nil {
				doc = undecodable(string(k), err)
			}
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, newError(OpList, userID, "", err)
	}
	return docs, nil
}

func (s *BoltStore) Delete(ctx context.Context, userID, recordID string) error {
	if err := validate(OpDelete, userID); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := records(tx, userID, false)
		if err != nil || b == nil {
			return err
		}
		return b.Delete([]byte(recordID))
	})
	if err != nil {
		return newError(OpDelete, userID, recordID, err)
	}
	return nil
}

func (s *BoltStore) Close() error { return s.db.Close() }
