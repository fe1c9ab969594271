package storage

import (
	"context"

	"github.com/sievekit/sieve/core"
)

// DocumentStore persists one record per ingested document. Implementations
// must be thread-safe and provide per-key atomicity: writes to different
// document IDs must not contend on a single lock.
type DocumentStore interface {
	// Lookup retrieves the record for a document ID.
	// Returns ErrNotFound if the document has never been ingested.
	Lookup(ctx context.Context, docID string) (*core.DocumentRecord, error)

	// Upsert creates or replaces records. A replaced record loses its
	// previous content hash and ref IDs entirely.
	Upsert(ctx context.Context, records ...*core.DocumentRecord) error

	// Delete removes records by document ID.
	// Returns ErrNotFound if any record doesn't exist.
	Delete(ctx context.Context, docIDs ...string) error

	// AllDocIDs returns the IDs of every stored record.
	AllDocIDs(ctx context.Context) ([]string, error)

	// AllRecords returns every stored record. Used by the snapshot
	// Controller to export store state.
	AllRecords(ctx context.Context) ([]*core.DocumentRecord, error)

	// Close releases resources held by the store.
	Close() error
}

// TransformCache remembers the artifacts a transformation stage produced for
// a given input. A hit requires both the input hash and the exact stage
// signature to match; anything else is a miss, never a partial reuse.
//
// Entries never expire implicitly. Eviction, if any, is an external policy.
type TransformCache interface {
	// Get returns the cached artifact sequence for the key.
	// Returns ErrNotFound on a miss. Lookups have no side effects.
	Get(ctx context.Context, inputHash, signature string) ([]core.Artifact, error)

	// Put stores the artifact sequence for the key, overwriting any prior
	// entry. The write is visible to subsequent Get calls as soon as Put
	// returns.
	Put(ctx context.Context, inputHash, signature string, artifacts []core.Artifact) error

	// AllEntries returns every cached entry. Used by the snapshot
	// Controller to export cache state.
	AllEntries(ctx context.Context) ([]*core.CacheEntry, error)

	// Close releases resources held by the cache.
	Close() error
}
