package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// Strategy controls how the pipeline treats documents that are already known
// to the document store.
type Strategy int

const (
	// StrategyUpsertsAndDelete reprocesses changed documents and removes
	// their stale artifacts from the attached vector index.
	StrategyUpsertsAndDelete Strategy = iota + 1

	// StrategyUpsertsNoDelete reprocesses changed documents but leaves stale
	// artifacts in the index untouched.
	StrategyUpsertsNoDelete

	// StrategyDuplicatesOnly reprocesses changed documents without touching
	// any index. This is the effective strategy when no index is attached.
	StrategyDuplicatesOnly

	// StrategyNone disables deduplication; every document is reprocessed on
	// every run. The store is still updated for bookkeeping.
	StrategyNone
)

// RequiresIndex reports whether the strategy only makes sense with a
// downstream vector index attached.
func (s Strategy) RequiresIndex() bool {
	return s == StrategyUpsertsAndDelete || s == StrategyUpsertsNoDelete
}

// String returns the canonical name used by configuration and logs.
func (s Strategy) String() string {
	switch s {
	case StrategyUpsertsAndDelete:
		return "upserts-and-delete"
	case StrategyUpsertsNoDelete:
		return "upserts-no-delete"
	case StrategyDuplicatesOnly:
		return "duplicates-only"
	case StrategyNone:
		return "none"
	default:
		return "strategy(" + strconv.Itoa(int(s)) + ")"
	}
}

// Document is an externally supplied unit of input content. The ID names the
// logical document across its lifetime (typically derived from a source
// path); content may change between runs, the ID does not.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// SourceStage is the lineage tag carried by root artifacts built directly
// from a document, before any transformation has run.
const SourceStage = "source"

// Artifact is the output of a transformation stage, tied back to the
// document it was derived from. Stage records the signature of the stage
// that produced it (SourceStage for root artifacts).
type Artifact struct {
	ID       string
	DocID    string
	Stage    string
	Text     string
	Metadata map[string]string
	Vector   []float32
}

// DocumentRecord is the document store's view of a previously ingested
// document: its last-seen content hash and the identifiers of the final
// artifacts produced from it.
type DocumentRecord struct {
	DocID       string
	ContentHash string
	RefIDs      []string
}

// CacheEntry holds the artifacts a stage produced for a given input, keyed
// by the input's content hash and the stage signature. An entry is only
// reusable when both key components match exactly.
type CacheEntry struct {
	InputHash string
	Signature string
	Artifacts []Artifact
}

// ArtifactID derives a deterministic artifact identifier from the parent
// document, the producing stage, the artifact's position in the stage output
// and its text. Identical inputs always yield identical IDs, which keeps
// cached artifacts stable across runs.
func ArtifactID(docID, stage string, position int, text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(docID))
	h.Write([]byte{0})
	h.Write([]byte(stage))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(position)))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// SourceArtifact builds the root artifact for a document. It is the input to
// the first transformation stage.
func SourceArtifact(doc *Document) Artifact {
	return Artifact{
		ID:       ArtifactID(doc.ID, SourceStage, 0, doc.Text),
		DocID:    doc.ID,
		Stage:    SourceStage,
		Text:     doc.Text,
		Metadata: doc.Metadata,
	}
}
