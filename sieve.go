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


package sieve

import (
	"log/slog"

	"github.com/sievekit/sieve/ingestion"
	"github.com/sievekit/sieve/storage"
	"github.com/sievekit/sieve/storage/badger"
)

// Workspace bundles a document store and transform cache over a single
// BadgerDB backend, and builds pipelines and snapshot controllers over them.
type Workspace struct {
	backend *badger.Backend
	store   storage.DocumentStore
	cache   storage.TransformCache
	logger  *slog.Logger
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// WithInMemory keeps all state in memory instead of on disk. Intended for
// tests and throwaway runs.
func WithInMemory() WorkspaceOption {
	return func(o *workspaceOptions) {
		o.inMemory = true
	}
}

// WithWorkspaceLogger sets a custom logger.
// Default is slog.Default().
func WithWorkspaceLogger(logger *slog.Logger) WorkspaceOption {
	return func(o *workspaceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open opens a workspace backed by the BadgerDB database at filePath.
func Open(filePath string, opts ...WorkspaceOption) (*Workspace, error) {
	options := &workspaceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		backend: backend,
		store:   badger.NewDocumentStore(backend),
		cache:   badger.NewTransformCache(backend),
		logger:  options.logger,
	}, nil
}

// Close releases the workspace and its backend.
func (w *Workspace) Close() error {
	if err := w.store.Close(); err != nil {
		w.logger.Error("error closing document store", "err", err)
		return err
	}
	if err := w.cache.Close(); err != nil {
		w.logger.Error("error closing transform cache", "err", err)
		return err
	}
	if err := w.backend.Close(); err != nil {
		w.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// DocumentStore returns the workspace's document store.
func (w *Workspace) DocumentStore() storage.DocumentStore {
	return w.store
}

// TransformCache returns the workspace's transform cache.
func (w *Workspace) TransformCache() storage.TransformCache {
	return w.cache
}

// NewPipeline builds an ingestion pipeline over the workspace's stores.
func (w *Workspace) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(w.logger)}, opts...)
	return ingestion.NewPipeline(w.store, w.cache, opts...)
}

// NewController builds a snapshot controller over the workspace's stores.
func (w *Workspace) NewController() *storage.Controller {
	return storage.NewController(w.store, w.cache, w.logger)
}
