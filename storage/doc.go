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


// Package storage provides the storage abstraction layer for sieve.
//
// It defines the two stores the ingestion pipeline depends on and decouples
// them from any concrete engine:
//
//   - DocumentStore: durable mapping from document ID to its last-seen
//     content hash and derived artifact IDs. This is the authority for
//     deduplication decisions.
//   - TransformCache: mapping from (input hash, stage signature) to the
//     artifacts a stage previously produced, enabling skip-on-repeat within
//     and across runs.
//
// Two implementations ship with the module: storage/badger (durable, BadgerDB)
// and storage/memstore (in-memory, for tests and embedding).
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return concrete types; the
// pipeline and the façade accept the interfaces defined here, so backends can
// be swapped without touching business logic.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use. Concurrent writes to
// different keys must not interfere; concurrent writes to the same key must
// serialize with last-writer-wins and no torn values.
//
// # Persistence
//
// The Controller serializes both stores into a single versioned snapshot
// file, written atomically, so a pipeline's dedup state survives process
// restarts even for in-memory backends.
package storage
