package core

import (
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/go-crypt/x/blake2b"
)

// Hasher computes stable content fingerprints for documents. The fingerprint
// covers the document text plus a configurable subset of metadata, so that
// two runs over identical input always agree on whether a document changed.
//
// Hashes are 256-bit BLAKE2b digests. Two different contents hashing to the
// same digest would be read as "unchanged"; that collision risk is accepted
// rather than corrected for.
type Hasher struct {
	// MetadataKeys is the subset of document metadata folded into the hash,
	// in addition to the text. Keys absent from a document are ignored.
	MetadataKeys []string
}

// NewHasher creates a Hasher covering the document text and the given
// metadata keys.
func NewHasher(metadataKeys ...string) *Hasher {
	return &Hasher{MetadataKeys: metadataKeys}
}

// Hash returns the hex-encoded content hash of a document. It is pure and
// deterministic: the result depends only on the document text and the
// configured metadata subset.
func (h *Hasher) Hash(doc *Document) (string, error) {
	if err := ValidateDocument(doc); err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashing, err)
	}

	d, err := blake2b.New(32, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	d.Write([]byte(doc.Text))

	// Sort keys so hashing order never depends on configuration order.
	keys := slices.Clone(h.MetadataKeys)
	slices.Sort(keys)
	keys = slices.Compact(keys)
	for _, key := range keys {
		value, ok := doc.Metadata[key]
		if !ok {
			continue
		}
		d.Write([]byte{0})
		d.Write([]byte(key))
		d.Write([]byte{0})
		d.Write([]byte(value))
	}

	return hex.EncodeToString(d.Sum(nil)), nil
}

// HashArtifacts fingerprints the input to a transformation stage. Artifact
// IDs are already content-derived, so hashing IDs and text is enough to
// detect any change in the stage input.
func HashArtifacts(artifacts []Artifact) string {
	d, _ := blake2b.New(32, nil)
	for _, artifact := range artifacts {
		d.Write([]byte(artifact.ID))
		d.Write([]byte{0})
		d.Write([]byte(artifact.Text))
		d.Write([]byte{0})
	}
	return hex.EncodeToString(d.Sum(nil))
}
