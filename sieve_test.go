package sieve

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sievekit/sieve/ai/mock"
	"github.com/sievekit/sieve/core"
	"github.com/sievekit/sieve/ingestion"
	"github.com/sievekit/sieve/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("create new workspace", func(t *testing.T) {
		ws, err := Open(filepath.Join(t.TempDir(), "test_db"))
		require.NoError(t, err)
		require.NotNil(t, ws)
		defer ws.Close()

		assert.NotNil(t, ws.DocumentStore())
		assert.NotNil(t, ws.TransformCache())
		assert.NotNil(t, ws.NewController())
	})

	t.Run("in-memory workspace", func(t *testing.T) {
		ws, err := Open("", WithInMemory())
		require.NoError(t, err)
		require.NotNil(t, ws)
		assert.NoError(t, ws.Close())
	})
}

func TestWorkspace_Close(t *testing.T) {
	ws, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, ws.Close())
}

func TestWorkspace_NewPipeline(t *testing.T) {
	ws, err := Open("", WithInMemory())
	require.NoError(t, err)
	defer ws.Close()

	pipeline, err := ws.NewPipeline()
	require.NoError(t, err)
	require.NotNil(t, pipeline)
	pipeline.Release()
}

// recordingIndex tracks inserted and deleted artifact IDs.
type recordingIndex struct {
	mu       sync.Mutex
	inserted map[string]bool
	deleted  []string
}

func newRecordingIndex() *recordingIndex {
	return &recordingIndex{inserted: make(map[string]bool)}
}

func (r *recordingIndex) Insert(ctx context.Context, artifacts []core.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, artifact := range artifacts {
		r.inserted[artifact.ID] = true
	}
	return nil
}

func (r *recordingIndex) Delete(ctx context.Context, refIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range refIDs {
		delete(r.inserted, id)
		r.deleted = append(r.deleted, id)
	}
	return nil
}

// TestWorkspace_IngestReingest runs the full lifecycle: ingest three
// documents, change one, re-ingest all three, then remove one and prune.
func TestWorkspace_IngestReingest(t *testing.T) {
	ctx := context.Background()
	ws, err := Open("", WithInMemory())
	require.NoError(t, err)
	defer ws.Close()

	index := newRecordingIndex()
	pipeline, err := ws.NewPipeline(
		ingestion.WithStrategy(core.StrategyUpsertsAndDelete),
		ingestion.WithIndex(index),
	)
	require.NoError(t, err)
	defer pipeline.Release()

	embedStage, err := ingestion.NewEmbeddingStage(mock.NewMockEmbedder(), "embeddinggemma", nil)
	require.NoError(t, err)
	stages := []ingestion.Transform{
		ingestion.NewSplitterStage(64, 8),
		embedStage,
	}

	docs := []core.Document{
		{ID: "a.md", Text: "alpha content that is long enough to be split into several chunks by the splitter stage."},
		{ID: "b.md", Text: "beta content, also long enough to produce more than a single chunk when split."},
		{ID: "c.md", Text: "gamma."},
	}

	// First run: everything is new.
	first, err := pipeline.Run(ctx, docs, stages)
	require.NoError(t, err)
	assert.Empty(t, first.Skipped)
	assert.Empty(t, first.Failures)
	assert.NotEmpty(t, first.Artifacts)
	for _, artifact := range first.Artifacts {
		assert.True(t, index.inserted[artifact.ID])
		assert.Len(t, artifact.Vector, 384)
	}

	recordB, err := ws.DocumentStore().Lookup(ctx, "b.md")
	require.NoError(t, err)
	staleRefs := recordB.RefIDs

	// Second run: only B changed; A and C are skipped, B's stale artifacts
	// are replaced in the index.
	docs[1].Text = "beta content rewritten from scratch, still long enough for multiple chunks."
	second, err := pipeline.Run(ctx, docs, stages)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.md", "c.md"}, second.Skipped)
	assert.Empty(t, second.Failures)
	for _, artifact := range second.Artifacts {
		assert.Equal(t, "b.md", artifact.DocID)
	}
	assert.ElementsMatch(t, staleRefs, index.deleted)

	// Third run with identical input: nothing to do.
	third, err := pipeline.Run(ctx, docs, stages)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.md", "b.md", "c.md"}, third.Skipped)
	assert.Empty(t, third.Artifacts)

	// C disappears from the source; prune removes its record and artifacts.
	recordC, err := ws.DocumentStore().Lookup(ctx, "c.md")
	require.NoError(t, err)
	require.NoError(t, pipeline.Prune(ctx, []string{"a.md", "b.md"}))
	_, err = ws.DocumentStore().Lookup(ctx, "c.md")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	for _, refID := range recordC.RefIDs {
		assert.False(t, index.inserted[refID])
	}
}

// TestWorkspace_StatePersistsAcrossReopen verifies dedup state survives a
// close and reopen of the same database path.
func TestWorkspace_StatePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db")
	docs := []core.Document{{ID: "a.md", Text: "persistent content"}}

	ws, err := Open(path)
	require.NoError(t, err)
	pipeline, err := ws.NewPipeline()
	require.NoError(t, err)
	_, err = pipeline.Run(ctx, docs, nil)
	require.NoError(t, err)
	pipeline.Release()
	require.NoError(t, ws.Close())

	ws, err = Open(path)
	require.NoError(t, err)
	defer ws.Close()
	pipeline, err = ws.NewPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	result, err := pipeline.Run(ctx, docs, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, result.Skipped)
}

// TestWorkspace_SnapshotTransfer moves state between two workspaces through
// a snapshot file.
func TestWorkspace_SnapshotTransfer(t *testing.T) {
	ctx := context.Background()
	snapshotPath := filepath.Join(t.TempDir(), "state.sieve")
	docs := []core.Document{{ID: "a.md", Text: "snapshotted content"}}

	origin, err := Open("", WithInMemory())
	require.NoError(t, err)
	defer origin.Close()
	pipeline, err := origin.NewPipeline()
	require.NoError(t, err)
	_, err = pipeline.Run(ctx, docs, nil)
	require.NoError(t, err)
	pipeline.Release()
	require.NoError(t, origin.NewController().Save(ctx, snapshotPath))

	replica, err := Open("", WithInMemory())
	require.NoError(t, err)
	defer replica.Close()
	require.NoError(t, replica.NewController().Load(ctx, snapshotPath))

	pipeline, err = replica.NewPipeline()
	require.NoError(t, err)
	defer pipeline.Release()
	result, err := pipeline.Run(ctx, docs, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, result.Skipped)
}
