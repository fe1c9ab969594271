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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	// For TransformCache.Get this is an ordinary cache miss.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable indicates the backing store is unreachable or closed.
	// This is fatal for a whole pipeline run, not just one document.
	ErrUnavailable = errors.New("store unavailable")

	// ErrCorruptState indicates persisted snapshot data failed a structural
	// or version check on load. It is surfaced to the caller and never
	// recovered silently by discarding state.
	ErrCorruptState = errors.New("corrupt persisted state")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")
)
