// Copyright 2025 Sievekit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package source

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sievekit/sieve/core"
)

// ErrNotADirectory is returned when a DirSource root is not a directory.
var ErrNotADirectory = errors.New("not a directory")

// DefaultExtensions are the file extensions a DirSource loads when none are
// configured explicitly.
var DefaultExtensions = []string{".md", ".txt"}

// DirSource loads documents from a directory tree. The document ID is the
// slash-separated path relative to the root, so a document keeps its identity
// across runs as long as the file stays in place. Hidden files and
// directories (dot-prefixed) are skipped.
type DirSource struct {
	root       string
	extensions []string
}

var _ Source = (*DirSource)(nil)

// DirOption configures a DirSource.
type DirOption func(*DirSource)

// WithExtensions sets the file extensions to load, replacing the defaults.
// Matching is case-insensitive.
func WithExtensions(extensions ...string) DirOption {
	return func(s *DirSource) {
		s.extensions = s.extensions[:0]
		for _, ext := range extensions {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			s.extensions = append(s.extensions, strings.ToLower(ext))
		}
	}
}

// NewDirSource creates a source over the given directory.
func NewDirSource(root string, opts ...DirOption) *DirSource {
	s := &DirSource{
		root:       root,
		extensions: slices.Clone(DefaultExtensions),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load walks the tree and returns one document per matching file, ordered by
// relative path.
func (s *DirSource) Load(ctx context.Context) ([]core.Document, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotADirectory
	}

	var documents []core.Document
	err = filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") && path != s.root {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(s.extensions, ext) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		documents = append(documents, core.Document{
			ID:   rel,
			Text: string(content),
			Metadata: map[string]string{
				"path": rel,
				"ext":  ext,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return documents, nil
}
