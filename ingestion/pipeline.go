package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sievekit/sieve/core"
	"github.com/sievekit/sieve/storage"
)

// Pipeline orchestrates content-addressed ingestion runs. It partitions each
// incoming batch into insert/skip/reprocess via the document store, runs the
// transformation chain over the surviving subset with a worker pool, consults
// the transform cache before every stage, and writes results back so the next
// run can skip unchanged work.
type Pipeline struct {
	store        storage.DocumentStore
	cache        storage.TransformCache
	index        VectorIndex
	hasher       *core.Hasher
	pool         *ants.Pool
	configured   core.Strategy
	effective    core.Strategy
	stageTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithStrategy sets the deduplication strategy.
// Default is StrategyUpsertsAndDelete.
func WithStrategy(strategy core.Strategy) Option {
	return func(p *Pipeline) error {
		if err := core.ValidateStrategy(strategy); err != nil {
			return err
		}
		p.configured = strategy
		return nil
	}
}

// WithIndex attaches a downstream vector index. Without one, strategies that
// require an index are downgraded to duplicates-only.
func WithIndex(index VectorIndex) Option {
	return func(p *Pipeline) error {
		p.index = index
		return nil
	}
}

// WithHasher sets the content hasher, controlling which metadata keys
// participate in change detection. Default hashes document text only.
func WithHasher(hasher *core.Hasher) Option {
	return func(p *Pipeline) error {
		if hasher == nil {
			hasher = core.NewHasher()
		}
		p.hasher = hasher
		return nil
	}
}

// WithStageTimeout bounds the execution of a single stage for a single
// document. A timeout is treated as that document's transformation failure,
// never as a run failure. Zero disables the bound.
func WithStageTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout < 0 {
			timeout = 0
		}
		p.stageTimeout = timeout
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent document processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline over the given stores.
func NewPipeline(store storage.DocumentStore, cache storage.TransformCache, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrDocumentStoreRequired
	}
	if cache == nil {
		return nil, ErrTransformCacheRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:      store,
		cache:      cache,
		hasher:     core.NewHasher(),
		pool:       pool,
		configured: core.StrategyUpsertsAndDelete,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.effective = resolveStrategy(p.configured, p.index != nil, p.logger)

	return p, nil
}

// Strategy returns the effective strategy for runs, after any downgrade.
func (p *Pipeline) Strategy() core.Strategy {
	return p.effective
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Failure records one document the run could not process. Stage is empty
// when content hashing failed before any stage ran.
type Failure struct {
	DocID string
	Stage string
	Err   error
}

// Result is the outcome of a pipeline run. Artifacts holds the final-stage
// artifacts of inserted and reprocessed documents, in decision order; skipped
// documents contribute nothing.
type Result struct {
	Artifacts []core.Artifact
	Failures  []Failure
	Skipped   []string
	Notices   []string
}

// unit is one document that survived partitioning, with its computed hash
// and prior record (nil on first ingestion).
type unit struct {
	doc  core.Document
	hash string
	prev *core.DocumentRecord
}

// Run executes the transformation chain over the batch. Per-document errors
// (hashing, stage failures, stage timeouts, index sync) are collected in
// Result.Failures; a document store or cache failure aborts the whole run.
func (p *Pipeline) Run(ctx context.Context, documents []core.Document, stages []Transform) (*Result, error) {
	result := &Result{}
	if p.effective != p.configured {
		result.Notices = append(result.Notices, fmt.Sprintf(
			"strategy %s downgraded to %s: no vector index attached",
			p.configured, p.effective))
	}

	// Partition the batch. Store reads happen up front so a dead backend
	// fails fast instead of surfacing as N per-document errors.
	units := make([]unit, 0, len(documents))
	for i := range documents {
		doc := documents[i]
		hash, err := p.hasher.Hash(&doc)
		if err != nil {
			result.Failures = append(result.Failures, Failure{DocID: doc.ID, Err: err})
			continue
		}

		prev, err := p.store.Lookup(ctx, doc.ID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("document store lookup: %w", err)
		}

		switch decide(p.effective, prev, hash) {
		case decisionSkip:
			result.Skipped = append(result.Skipped, doc.ID)
		default:
			units = append(units, unit{doc: doc, hash: hash, prev: prev})
		}
	}

	p.logger.Info("pipeline run partitioned",
		"total", len(documents),
		"processing", len(units),
		"skipped", len(result.Skipped),
		"failed", len(result.Failures))

	if len(units) == 0 {
		return result, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		fatal error
	)
	// Per-unit output slots keep emission order equal to decision order
	// regardless of worker completion order.
	slots := make([][]core.Artifact, len(units))

	for i := range units {
		u := units[i]
		slot := i
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			artifacts, runErr := p.runDocument(runCtx, &u.doc, u.hash, u.prev, stages)

			mu.Lock()
			defer mu.Unlock()
			if runErr != nil {
				var stageErr *StageError
				if errors.As(runErr, &stageErr) {
					result.Failures = append(result.Failures, Failure{
						DocID: u.doc.ID,
						Stage: stageErr.Stage,
						Err:   runErr,
					})
					return
				}
				// Store or cache failure: fatal for the run. Cancel the
				// remaining workers; documents already upserted stay valid.
				if fatal == nil {
					fatal = runErr
					cancel()
				}
				return
			}
			slots[slot] = artifacts
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			if fatal == nil {
				fatal = fmt.Errorf("submitting document %q: %w", u.doc.ID, err)
				cancel()
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	if fatal != nil {
		return nil, fatal
	}

	for _, artifacts := range slots {
		result.Artifacts = append(result.Artifacts, artifacts...)
	}

	p.logger.Info("pipeline run complete",
		"artifacts", len(result.Artifacts),
		"failures", len(result.Failures))
	return result, nil
}

// runDocument drives one document through the full chain and, on success,
// updates the index and the store. The store upsert is last: if anything
// before it fails, the stored record is untouched and the next run simply
// reprocesses the document.
func (p *Pipeline) runDocument(ctx context.Context, doc *core.Document, hash string, prev *core.DocumentRecord, stages []Transform) ([]core.Artifact, error) {
	artifacts := []core.Artifact{core.SourceArtifact(doc)}

	for _, stage := range stages {
		signature := stage.Signature()
		inputHash := core.HashArtifacts(artifacts)

		cached, err := p.cache.Get(ctx, inputHash, signature)
		if err == nil {
			p.logger.Debug("stage cache hit", "doc", doc.ID, "stage", signature)
			artifacts = cached
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("transform cache get: %w", err)
		}

		out, err := p.applyStage(ctx, stage, artifacts)
		if err != nil {
			return nil, &StageError{DocID: doc.ID, Stage: signature, Err: err}
		}

		if err := p.cache.Put(ctx, inputHash, signature, out); err != nil {
			return nil, fmt.Errorf("transform cache put: %w", err)
		}
		artifacts = out
	}

	if p.index != nil {
		if prev != nil && p.effective == core.StrategyUpsertsAndDelete && len(prev.RefIDs) > 0 {
			if err := p.index.Delete(ctx, prev.RefIDs); err != nil {
				return nil, &StageError{DocID: doc.ID, Stage: "vector-index", Err: err}
			}
		}
		if err := p.index.Insert(ctx, artifacts); err != nil {
			return nil, &StageError{DocID: doc.ID, Stage: "vector-index", Err: err}
		}
	}

	refIDs := make([]string, len(artifacts))
	for i, artifact := range artifacts {
		refIDs[i] = artifact.ID
	}
	record := &core.DocumentRecord{DocID: doc.ID, ContentHash: hash, RefIDs: refIDs}
	if err := p.store.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("document store upsert: %w", err)
	}

	return artifacts, nil
}

// applyStage executes one stage under the configured timeout. The stage runs
// in its own goroutine so a stage that ignores its context still cannot hold
// the document past the deadline.
func (p *Pipeline) applyStage(ctx context.Context, stage Transform, in []core.Artifact) ([]core.Artifact, error) {
	if p.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.stageTimeout)
		defer cancel()
	}

	type applied struct {
		artifacts []core.Artifact
		err       error
	}
	done := make(chan applied, 1)
	go func() {
		out, err := stage.Apply(ctx, in)
		done <- applied{out, err}
	}()

	select {
	case a := <-done:
		return a.artifacts, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Prune removes every stored record whose document ID is not in currentIDs.
// Under upserts-and-delete with an index attached, a pruned document's
// artifacts are deleted from the index first. Documents merely absent from a
// Run batch are never pruned implicitly; this must be invoked explicitly.
func (p *Pipeline) Prune(ctx context.Context, currentIDs []string) error {
	current := make(map[string]struct{}, len(currentIDs))
	for _, id := range currentIDs {
		current[id] = struct{}{}
	}

	stored, err := p.store.AllDocIDs(ctx)
	if err != nil {
		return fmt.Errorf("document store list: %w", err)
	}

	pruned := 0
	for _, docID := range stored {
		if _, ok := current[docID]; ok {
			continue
		}

		record, err := p.store.Lookup(ctx, docID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return fmt.Errorf("document store lookup: %w", err)
		}

		if p.index != nil && p.effective == core.StrategyUpsertsAndDelete && len(record.RefIDs) > 0 {
			if err := p.index.Delete(ctx, record.RefIDs); err != nil {
				return fmt.Errorf("vector index delete for %q: %w", docID, err)
			}
		}

		if err := p.store.Delete(ctx, docID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("document store delete: %w", err)
		}
		pruned++
	}

	p.logger.Info("prune complete", "pruned", pruned, "kept", len(stored)-pruned)
	return nil
}
