// Package memstore provides in-memory implementations of the storage
// interfaces for tests and for embedding without a durable backend. State
// survives only as long as the process unless exported through the snapshot
// Controller.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/sievekit/sieve/core"
	"github.com/sievekit/sieve/storage"
)

// DocumentStore is an in-memory implementation of storage.DocumentStore.
type DocumentStore struct {
	mu      sync.RWMutex
	records map[string]core.DocumentRecord
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{records: make(map[string]core.DocumentRecord)}
}

// Close implements storage.DocumentStore.
func (s *DocumentStore) Close() error { return nil }

// Lookup returns the record for a document ID.
func (s *DocumentStore) Lookup(ctx context.Context, docID string) (*core.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[docID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyRecord(record), nil
}

// Upsert creates or replaces records.
func (s *DocumentStore) Upsert(ctx context.Context, records ...*core.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		s.records[record.DocID] = *copyRecord(*record)
	}
	return nil
}

// Delete removes records by document ID.
func (s *DocumentStore) Delete(ctx context.Context, docIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, docID := range docIDs {
		if _, ok := s.records[docID]; !ok {
			return storage.ErrNotFound
		}
		delete(s.records, docID)
	}
	return nil
}

// AllDocIDs returns the IDs of every stored record, sorted for determinism.
func (s *DocumentStore) AllDocIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// AllRecords returns every stored record, sorted by document ID.
func (s *DocumentStore) AllRecords(ctx context.Context) ([]*core.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*core.DocumentRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, copyRecord(record))
	}
	slices.SortFunc(records, func(a, b *core.DocumentRecord) int {
		switch {
		case a.DocID < b.DocID:
			return -1
		case a.DocID > b.DocID:
			return 1
		default:
			return 0
		}
	})
	return records, nil
}

func copyRecord(record core.DocumentRecord) *core.DocumentRecord {
	record.RefIDs = slices.Clone(record.RefIDs)
	return &record
}

type cacheKey struct {
	inputHash string
	signature string
}

// TransformCache is an in-memory implementation of storage.TransformCache.
type TransformCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]core.CacheEntry
}

var _ storage.TransformCache = (*TransformCache)(nil)

// NewTransformCache creates a new in-memory transform cache.
func NewTransformCache() *TransformCache {
	return &TransformCache{entries: make(map[cacheKey]core.CacheEntry)}
}

// Close implements storage.TransformCache.
func (c *TransformCache) Close() error { return nil }

// Get returns the cached artifact sequence for the key.
func (c *TransformCache) Get(ctx context.Context, inputHash, signature string) ([]core.Artifact, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey{inputHash, signature}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return slices.Clone(entry.Artifacts), nil
}

// Put stores the artifact sequence for the key, overwriting any prior entry.
func (c *TransformCache) Put(ctx context.Context, inputHash, signature string, artifacts []core.Artifact) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey{inputHash, signature}] = core.CacheEntry{
		InputHash: inputHash,
		Signature: signature,
		Artifacts: slices.Clone(artifacts),
	}
	return nil
}

// AllEntries returns every cached entry, sorted by key for determinism.
func (c *TransformCache) AllEntries(ctx context.Context) ([]*core.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]*core.CacheEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entry.Artifacts = slices.Clone(entry.Artifacts)
		entries = append(entries, &entry)
	}
	slices.SortFunc(entries, func(a, b *core.CacheEntry) int {
		if a.InputHash != b.InputHash {
			if a.InputHash < b.InputHash {
				return -1
			}
			return 1
		}
		switch {
		case a.Signature < b.Signature:
			return -1
		case a.Signature > b.Signature:
			return 1
		default:
			return 0
		}
	})
	return entries, nil
}
