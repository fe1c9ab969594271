package ingestion

import (
	"log/slog"

	"github.com/sievekit/sieve/core"
)

// decision is the per-document outcome of consulting the document store.
type decision int

const (
	// decisionInsert: the document has never been ingested; run the full chain.
	decisionInsert decision = iota + 1

	// decisionSkip: content unchanged; transformations are not invoked and
	// the document contributes nothing to the run's output.
	decisionSkip

	// decisionReprocess: content changed (or dedup is disabled); run the full
	// chain and replace the stored record.
	decisionReprocess
)

// decide classifies a document given its stored record (nil when absent) and
// freshly computed content hash.
func decide(strategy core.Strategy, prev *core.DocumentRecord, contentHash string) decision {
	switch {
	case prev == nil:
		return decisionInsert
	case strategy == core.StrategyNone:
		// Dedup disabled: always reprocess, store updated for bookkeeping.
		return decisionReprocess
	case prev.ContentHash == contentHash:
		return decisionSkip
	default:
		return decisionReprocess
	}
}

// resolveStrategy downgrades a strategy that requires a vector index when
// none is attached. The downgrade is deliberate policy, not an error: it is
// logged at warning level and reported as a notice on the run result, and
// the run proceeds with duplicates-only semantics.
func resolveStrategy(configured core.Strategy, hasIndex bool, logger *slog.Logger) core.Strategy {
	if configured.RequiresIndex() && !hasIndex {
		logger.Warn("no vector index attached, downgrading strategy",
			"configured", configured.String(),
			"effective", core.StrategyDuplicatesOnly.String())
		return core.StrategyDuplicatesOnly
	}
	return configured
}
