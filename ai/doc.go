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


// Package ai provides the embedding abstraction used by the embedding
// transformation stage.
//
// The pipeline itself never talks to a model; it depends on the Embedder
// interface, so embedding providers can be swapped without touching
// orchestration or caching logic.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: deterministic test double for unit testing without a service
//
// Public constructors (openai.NewEmbedder) return the interface type to
// enforce abstraction; mock.NewMockEmbedder returns the concrete type so
// tests can inject behavior and assert call counts.
package ai
