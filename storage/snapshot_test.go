package storage_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mus-format/mus-go/varint"
	"github.com/sievekit/sieve/core"
	"github.com/sievekit/sieve/storage"
	"github.com/sievekit/sieve/storage/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedStores(t *testing.T) (*memstore.DocumentStore, *memstore.TransformCache) {
	t.Helper()
	ctx := context.Background()

	store := memstore.NewDocumentStore()
	require.NoError(t, store.Upsert(ctx,
		&core.DocumentRecord{DocID: "a", ContentHash: "h-a", RefIDs: []string{"r1", "r2"}},
		&core.DocumentRecord{DocID: "b", ContentHash: "h-b", RefIDs: []string{"r3"}},
	))

	cache := memstore.NewTransformCache()
	require.NoError(t, cache.Put(ctx, "in-1", "split:recursive:512:64", []core.Artifact{
		{ID: "r1", DocID: "a", Stage: "split:recursive:512:64", Text: "first",
			Metadata: map[string]string{"path": "a.txt"}, Vector: []float32{1, 0.5}},
		{ID: "r2", DocID: "a", Stage: "split:recursive:512:64", Text: "second",
			Metadata: map[string]string{"path": "a.txt"}, Vector: []float32{0.25, -0.5}},
	}))
	return store, cache
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, cache := populatedStores(t)
	path := filepath.Join(t.TempDir(), "state.sieve")

	require.NoError(t, storage.NewController(store, cache, nil).Save(ctx, path))

	restoredStore := memstore.NewDocumentStore()
	restoredCache := memstore.NewTransformCache()
	require.NoError(t, storage.NewController(restoredStore, restoredCache, nil).Load(ctx, path))

	want, err := store.AllRecords(ctx)
	require.NoError(t, err)
	got, err := restoredStore.AllRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	wantEntries, err := cache.AllEntries(ctx)
	require.NoError(t, err)
	gotEntries, err := restoredCache.AllEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantEntries, gotEntries)
}

func TestSnapshotEmptyState(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.sieve")

	require.NoError(t, storage.NewController(
		memstore.NewDocumentStore(), memstore.NewTransformCache(), nil).Save(ctx, path))

	store := memstore.NewDocumentStore()
	cache := memstore.NewTransformCache()
	require.NoError(t, storage.NewController(store, cache, nil).Load(ctx, path))

	ids, err := store.AllDocIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	entries, err := cache.AllEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSnapshotSaveLeavesNoTempFile(t *testing.T) {
	ctx := context.Background()
	store, cache := populatedStores(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "state.sieve")

	require.NoError(t, storage.NewController(store, cache, nil).Save(ctx, path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSnapshotLoadRejectsCorruptData(t *testing.T) {
	ctx := context.Background()
	store, cache := populatedStores(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "state.sieve")
	require.NoError(t, storage.NewController(store, cache, nil).Save(ctx, path))
	valid, err := os.ReadFile(path)
	require.NoError(t, err)

	// An empty snapshot pins the region offsets: 4 magic bytes, format
	// version, then one varint byte each for region version and zero count.
	emptyPath := filepath.Join(dir, "empty.sieve")
	require.NoError(t, storage.NewController(
		memstore.NewDocumentStore(), memstore.NewTransformCache(), nil).Save(ctx, emptyPath))
	empty, err := os.ReadFile(emptyPath)
	require.NoError(t, err)

	hugeCount := make([]byte, varint.Uint64.Size(1<<62))
	varint.Uint64.Marshal(1<<62, hugeCount)

	corruptions := []struct {
		name string
		data []byte
	}{
		{"empty file", nil},
		{"bad magic", append([]byte("XXXX"), valid[4:]...)},
		{"unsupported version", append(append([]byte{}, valid[:4]...), append([]byte{99}, valid[5:]...)...)},
		{"truncated", valid[:len(valid)-3]},
		{"trailing bytes", append(append([]byte{}, valid...), 0, 0, 0)},
		{"oversized store count", append(append([]byte{}, empty[:6]...), hugeCount...)},
		{"oversized cache count", append(append([]byte{}, empty[:8]...), hugeCount...)},
	}

	for _, tt := range corruptions {
		t.Run(tt.name, func(t *testing.T) {
			corruptPath := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(corruptPath, tt.data, 0644))

			restoredStore := memstore.NewDocumentStore()
			restoredCache := memstore.NewTransformCache()
			err := storage.NewController(restoredStore, restoredCache, nil).Load(ctx, corruptPath)
			require.ErrorIs(t, err, storage.ErrCorruptState)

			// Nothing may be partially restored.
			ids, idsErr := restoredStore.AllDocIDs(ctx)
			require.NoError(t, idsErr)
			assert.Empty(t, ids)
			entries, entriesErr := restoredCache.AllEntries(ctx)
			require.NoError(t, entriesErr)
			assert.Empty(t, entries)
		})
	}
}

func TestSnapshotRestoreLargeState(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewDocumentStore()
	for i := 0; i < 300; i++ {
		require.NoError(t, store.Upsert(ctx, &core.DocumentRecord{
			DocID:       fmt.Sprintf("docs/%03d.md", i),
			ContentHash: fmt.Sprintf("hash-%03d", i),
			RefIDs:      []string{fmt.Sprintf("ref-%03d", i)},
		}))
	}
	path := filepath.Join(t.TempDir(), "state.sieve")
	cache := memstore.NewTransformCache()
	require.NoError(t, storage.NewController(store, cache, nil).Save(ctx, path))

	restoredStore := memstore.NewDocumentStore()
	require.NoError(t, storage.NewController(restoredStore, memstore.NewTransformCache(), nil).Load(ctx, path))

	want, err := store.AllRecords(ctx)
	require.NoError(t, err)
	got, err := restoredStore.AllRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSnapshotLoadMissingFile(t *testing.T) {
	err := storage.NewController(
		memstore.NewDocumentStore(), memstore.NewTransformCache(), nil).
		Load(context.Background(), filepath.Join(t.TempDir(), "absent.sieve"))
	assert.True(t, os.IsNotExist(err))
}
