package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentStoreRequired is returned when a document store is not provided.
	ErrDocumentStoreRequired = errors.New("document store required")

	// ErrTransformCacheRequired is returned when a transform cache is not provided.
	ErrTransformCacheRequired = errors.New("transform cache required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)

// StageError reports a per-document failure in the transformation chain,
// including stage timeouts and vector index synchronization failures. It is
// collected alongside successful results and never aborts the batch.
type StageError struct {
	DocID string
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q failed for document %q: %v", e.Stage, e.DocID, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
