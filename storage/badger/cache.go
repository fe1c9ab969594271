package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/sievekit/sieve/core"
	"github.com/sievekit/sieve/storage"
)

// TransformCache implements storage.TransformCache for BadgerDB. Entries are
// keyed by (input hash, stage signature); BadgerDB transactions give per-key
// write atomicity, so concurrent puts on different keys never interfere.
type TransformCache struct {
	backend *Backend
}

var _ storage.TransformCache = (*TransformCache)(nil)

// NewTransformCache creates a new TransformCache.
func NewTransformCache(backend *Backend) *TransformCache {
	return &TransformCache{backend: backend}
}

// Close releases cache resources. The underlying backend is shared and is
// closed separately.
func (c *TransformCache) Close() error {
	return nil
}

// Get returns the cached artifact sequence for the key.
func (c *TransformCache) Get(ctx context.Context, inputHash, signature string) ([]core.Artifact, error) {
	var artifacts []core.Artifact
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheEntryKey(inputHash, signature))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err := storage.UnmarshalCacheEntry(val)
			if err != nil {
				return err
			}
			artifacts = entry.Artifacts
			return nil
		})
	}, false)
	if err != nil {
		return nil, mapErr(err)
	}
	return artifacts, nil
}

// Put stores the artifact sequence for the key, overwriting any prior entry.
func (c *TransformCache) Put(ctx context.Context, inputHash, signature string, artifacts []core.Artifact) error {
	entry := &core.CacheEntry{
		InputHash: inputHash,
		Signature: signature,
		Artifacts: artifacts,
	}
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCacheEntryKey(inputHash, signature)
		if err := tx.Set(key, storage.MarshalCacheEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return mapErr(err)
}

// AllEntries returns every cached entry.
func (c *TransformCache) AllEntries(ctx context.Context) ([]*core.CacheEntry, error) {
	var entries []*core.CacheEntry
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(cacheEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalCacheEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return entries, mapErr(err)
}
