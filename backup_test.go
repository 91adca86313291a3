package boolgo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/boolgo/blobstore"
)

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	src := newTestBackend(t, WithBlobStore(store))
	indexTestRecords(t, src)
	require.NoError(t, src.Backup(ctx, "nightly"))

	blobs, err := store.List(ctx, "nightly/")
	require.NoError(t, err)
	assert.NotEmpty(t, blobs)

	// Restore into an empty index elsewhere.
	dst := newTestBackend(t, WithBlobStore(store))
	require.NoError(t, dst.Restore(ctx, "nightly"))

	res, err := dst.Search(ctx, matchAllPosts(), SearchOptions{SortBy: []string{"views"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1", "3"}, pks(res))
}

func TestBackupWithoutStore(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	require.ErrorIs(t, b.Backup(ctx, "nightly"), ErrNoBlobStore)
	require.ErrorIs(t, b.Restore(ctx, "nightly"), ErrNoBlobStore)
}
