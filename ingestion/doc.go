// Package ingestion provides pipeline orchestration for content-addressed
// document processing.
//
// The Pipeline type runs an ordered chain of transformation stages over a
// batch of documents while avoiding redundant work:
//   - Documents already ingested with an unchanged content hash are skipped
//     entirely; their transformations are never invoked.
//   - Stage outputs are cached by (input hash, stage signature), so repeated
//     inputs reuse prior results within and across runs.
//   - Changed documents are reprocessed according to the configured Strategy,
//     replacing stale artifacts in an attached vector index when required.
//
// Documents are processed concurrently using a worker pool; stages within a
// single document run strictly in sequence. A failure in one document's chain
// is isolated and reported per document; it never aborts the batch.
package ingestion
