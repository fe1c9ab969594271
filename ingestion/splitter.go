package ingestion

import (
	"context"
	"fmt"

	"github.com/sievekit/sieve/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// SplitterStage chunks artifact text with a recursive character splitter.
// Chunk size and overlap are part of the signature, so changing either
// invalidates cached outputs.
type SplitterStage struct {
	splitter  textsplitter.RecursiveCharacter
	signature string
}

var _ Transform = (*SplitterStage)(nil)

// NewSplitterStage creates a splitter stage producing chunks of at most
// chunkSize characters with the given overlap between neighbors.
func NewSplitterStage(chunkSize, chunkOverlap int) *SplitterStage {
	return &SplitterStage{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		signature: fmt.Sprintf("split:recursive:%d:%d", chunkSize, chunkOverlap),
	}
}

// Signature implements Transform.
func (s *SplitterStage) Signature() string {
	return s.signature
}

// Apply splits each input artifact into chunk artifacts. Chunk IDs are
// derived from the parent document, this stage's signature, the chunk
// position and text, so re-splitting unchanged input reproduces the same IDs.
func (s *SplitterStage) Apply(ctx context.Context, artifacts []core.Artifact) ([]core.Artifact, error) {
	var out []core.Artifact
	for _, artifact := range artifacts {
		chunks, err := s.splitter.SplitText(artifact.Text)
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			out = append(out, core.Artifact{
				ID:       core.ArtifactID(artifact.DocID, s.signature, len(out), chunk),
				DocID:    artifact.DocID,
				Stage:    s.signature,
				Text:     chunk,
				Metadata: artifact.Metadata,
			})
		}
	}
	return out, nil
}
