package ingestion

import (
	"context"

	"github.com/sievekit/sieve/core"
)

// VectorIndex is the optional downstream index the pipeline keeps in sync
// with the document store. When no index is attached, strategies that require
// one are downgraded to duplicates-only for the run.
type VectorIndex interface {
	// Insert adds final artifacts to the index.
	Insert(ctx context.Context, artifacts []core.Artifact) error

	// Delete removes artifacts by their IDs. Called before reinserting a
	// changed document's artifacts under the upserts-and-delete strategy, so
	// stale artifacts never remain visible after a successful upsert.
	Delete(ctx context.Context, refIDs []string) error
}
