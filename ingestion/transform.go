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


package ingestion

import (
	"context"

	"github.com/sievekit/sieve/core"
)

// Transform is a single transformation stage in the pipeline chain.
// Implementations must be thread-safe; the pipeline applies a stage to many
// documents concurrently.
type Transform interface {
	// Apply transforms a sequence of artifacts into a new sequence.
	// It must be deterministic for a given input and configuration, since
	// its output is cached under the input hash and Signature.
	Apply(ctx context.Context, artifacts []core.Artifact) ([]core.Artifact, error)

	// Signature identifies the stage and its complete configuration. Two
	// stages configured identically must yield identical signatures; any
	// configuration difference must change the signature, since it is half
	// of the cache key.
	Signature() string
}
