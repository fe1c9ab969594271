package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sievekit/sieve/ai"
	"github.com/sievekit/sieve/core"
)

// EmbeddingStage attaches embedding vectors to artifacts. The model name is
// part of the signature: switching models invalidates cached embeddings.
type EmbeddingStage struct {
	embedder  ai.Embedder
	signature string
	logger    *slog.Logger
}

var _ Transform = (*EmbeddingStage)(nil)

// NewEmbeddingStage creates an embedding stage using the given embedder.
// The model name identifies the embedder's configuration in the signature.
func NewEmbeddingStage(embedder ai.Embedder, model string, logger *slog.Logger) (*EmbeddingStage, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingStage{
		embedder:  embedder,
		signature: "embed:" + model,
		logger:    logger.With("stage", "embedding"),
	}, nil
}

// Signature implements Transform.
func (e *EmbeddingStage) Signature() string {
	return e.signature
}

// Apply embeds all artifact texts in one batch and returns the artifacts
// with vectors attached. Text, IDs and lineage to the parent document are
// preserved; only the vector and stage tag change.
func (e *EmbeddingStage) Apply(ctx context.Context, artifacts []core.Artifact) ([]core.Artifact, error) {
	if len(artifacts) == 0 {
		return nil, nil
	}

	texts := make([]string, len(artifacts))
	for i, artifact := range artifacts {
		texts[i] = artifact.Text
	}

	e.logger.Debug("generating embeddings for artifacts", "count", len(texts))
	vectors, err := e.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(artifacts) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(artifacts), len(vectors))
	}

	out := make([]core.Artifact, len(artifacts))
	for i, artifact := range artifacts {
		artifact.Stage = e.signature
		artifact.Vector = vectors[i]
		out[i] = artifact
	}
	return out, nil
}
