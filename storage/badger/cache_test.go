package badger

import (
	"context"
	"testing"

	"github.com/sievekit/sieve/core"
	"github.com/sievekit/sieve/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformCacheGetMissing(t *testing.T) {
	_, cache := newTestStores(t)

	_, err := cache.Get(context.Background(), "in", "sig")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTransformCachePutAndGet(t *testing.T) {
	_, cache := newTestStores(t)
	ctx := context.Background()

	artifacts := []core.Artifact{
		{
			ID:       "c1",
			DocID:    "doc",
			Stage:    "split:recursive:512:64",
			Text:     "chunk",
			Metadata: map[string]string{"path": "doc.txt"},
			Vector:   []float32{0.5, -0.5},
		},
	}
	require.NoError(t, cache.Put(ctx, "in", "split:recursive:512:64", artifacts))

	got, err := cache.Get(ctx, "in", "split:recursive:512:64")
	require.NoError(t, err)
	assert.Equal(t, artifacts, got)
}

func TestTransformCacheKeyedByBothComponents(t *testing.T) {
	_, cache := newTestStores(t)
	ctx := context.Background()

	artifacts := []core.Artifact{{ID: "c1", DocID: "doc", Stage: "sig-a", Text: "chunk"}}
	require.NoError(t, cache.Put(ctx, "in", "sig-a", artifacts))

	_, err := cache.Get(ctx, "in", "sig-b")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = cache.Get(ctx, "other", "sig-a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTransformCachePutOverwrites(t *testing.T) {
	_, cache := newTestStores(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "in", "sig",
		[]core.Artifact{{ID: "old", DocID: "doc", Stage: "sig", Text: "old"}}))
	require.NoError(t, cache.Put(ctx, "in", "sig",
		[]core.Artifact{{ID: "new", DocID: "doc", Stage: "sig", Text: "new"}}))

	got, err := cache.Get(ctx, "in", "sig")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestTransformCacheAllEntries(t *testing.T) {
	_, cache := newTestStores(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "in-1", "sig",
		[]core.Artifact{{ID: "c1", DocID: "doc", Stage: "sig", Text: "one"}}))
	require.NoError(t, cache.Put(ctx, "in-2", "sig",
		[]core.Artifact{{ID: "c2", DocID: "doc", Stage: "sig", Text: "two"}}))

	entries, err := cache.AllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, "sig", entry.Signature)
		assert.Len(t, entry.Artifacts, 1)
	}
}
