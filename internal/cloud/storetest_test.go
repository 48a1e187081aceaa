package cloud

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/pocketlibrary/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawWriter stores data under a record without going through Put, the way a
// foreign client or a damaged object would.
type rawWriter func(t *testing.T, userID, recordID string, data []byte)

// exerciseStore runs the behaviour every backend shares.
func exerciseStore(t *testing.T, s Store, writeRaw rawWriter) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing returns nil", func(t *testing.T) {
		doc, err := s.Get(ctx, "alice", "nope")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "alice", Document{
			"id": "OL1W", "title": "Dune", "author": "Frank Herbert", "year": 1965.0,
		}))

		doc, err := s.Get(ctx, "alice", "OL1W")
		require.NoError(t, err)
		assert.Equal(t, "Dune", doc["title"])
		assert.Equal(t, 1965.0, doc["year"])
	})

	t.Run("partial put preserves other fields", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "alice", Document{"id": "OL1W", "personalPhotoPath": "/p/1.jpg"}))

		doc, err := s.Get(ctx, "alice", "OL1W")
		require.NoError(t, err)
		assert.Equal(t, "Dune", doc["title"])
		assert.Equal(t, "/p/1.jpg", doc["personalPhotoPath"])
	})

	t.Run("users are isolated", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "bob", Document{"id": "B1", "title": "Foundation"}))

		docs, err := s.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "OL1W", docs[0]["id"])

		doc, err := s.Get(ctx, "alice", "B1")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("list unknown user is empty", func(t *testing.T) {
		docs, err := s.List(ctx, "carol")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "alice", "OL1W"))
		require.NoError(t, s.Delete(ctx, "alice", "OL1W"), "deleting twice is fine")
		require.NoError(t, s.Delete(ctx, "nobody", "x"))

		doc, err := s.Get(ctx, "alice", "OL1W")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("corrupt value does not hide the rest of the collection", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "dave", Document{"id": "good", "title": "Dune"}))
		writeRaw(t, "dave", "bad", []byte("not json"))

		docs, err := s.List(ctx, "dave")
		require.NoError(t, err)
		require.Len(t, docs, 2)

		byID := map[string]Document{}
		for _, d := range docs {
			id, ok := RecordID(d)
			require.True(t, ok)
			byID[id] = d
		}
		assert.Equal(t, "Dune", byID["good"]["title"])
		assert.NotEmpty(t, byID["bad"][UndecodableField])
		assert.NotContains(t, byID["good"], UndecodableField)
	})

	t.Run("put replaces a corrupt value", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "dave", Document{"id": "bad", "title": "Repaired"}))

		doc, err := s.Get(ctx, "dave", "bad")
		require.NoError(t, err)
		assert.Equal(t, "Repaired", doc["title"])
	})

	t.Run("empty user and missing id are rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.Put(ctx, "", Document{"id": "x"}), common.ErrCloudSync)
		assert.ErrorIs(t, s.Put(ctx, "alice", Document{"title": "no id"}), common.ErrCloudSync)
		_, err := s.Get(ctx, " ", "x")
		assert.ErrorIs(t, err, common.ErrCloudSync)
		_, err = s.List(ctx, "")
		assert.ErrorIs(t, err, common.ErrCloudSync)
		assert.ErrorIs(t, s.Delete(ctx, "", "x"), common.ErrCloudSync)
	})
}
