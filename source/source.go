// Package source loads documents for ingestion. A Source produces the full
// current document set on every call; partitioning into new, changed and
// unchanged documents is the pipeline's job, not the source's.
package source

import (
	"context"

	"github.com/sievekit/sieve/core"
)

// Source produces the current document set.
type Source interface {
	Load(ctx context.Context) ([]core.Document, error)
}
