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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty (it names the document across runs)
//
// NOT validated:
//   - Text (an empty payload still has a well-defined content hash)
//   - Metadata (optional; only the configured hashing subset matters)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocID)
	}
	return nil
}

// ValidateStrategy validates that a Strategy has a known value.
func ValidateStrategy(strategy Strategy) error {
	switch strategy {
	case StrategyUpsertsAndDelete, StrategyUpsertsNoDelete, StrategyDuplicatesOnly, StrategyNone:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStrategy, strategy)
	}
}

// ParseStrategy maps a canonical strategy name to its Strategy value.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "upserts-and-delete":
		return StrategyUpsertsAndDelete, nil
	case "upserts-no-delete":
		return StrategyUpsertsNoDelete, nil
	case "duplicates-only":
		return StrategyDuplicatesOnly, nil
	case "none":
		return StrategyNone, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, name)
	}
}
