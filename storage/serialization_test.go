package storage_test

import (
	"testing"

	"github.com/sievekit/sieve/core"
	"github.com/sievekit/sieve/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRecordSerialization(t *testing.T) {
	record := &core.DocumentRecord{
		DocID:       "docs/intro.md",
		ContentHash: "1f3870be274f6c49b3e31a0c6728957f",
		RefIDs:      []string{"r1", "r2", "r3"},
	}

	got, err := storage.UnmarshalDocumentRecord(storage.MarshalDocumentRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestCacheEntrySerialization(t *testing.T) {
	entry := &core.CacheEntry{
		InputHash: "in-hash",
		Signature: "embed:embeddinggemma",
		Artifacts: []core.Artifact{
			{
				ID:       "c1",
				DocID:    "docs/intro.md",
				Stage:    "embed:embeddinggemma",
				Text:     "chunk text",
				Metadata: map[string]string{"path": "docs/intro.md", "ext": ".md"},
				Vector:   []float32{0.1, -0.2, 0.3},
			},
		},
	}

	got, err := storage.UnmarshalCacheEntry(storage.MarshalCacheEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestUnmarshalGarbageFails(t *testing.T) {
	// A huge declared string length cannot be satisfied by the buffer.
	_, err := storage.UnmarshalDocumentRecord([]byte{0xFF, 0xFF, 0xFF, 0x7F})
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)

	_, err = storage.UnmarshalCacheEntry([]byte{0xFF})
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
}
