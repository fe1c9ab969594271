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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyDocID indicates the document ID field is empty.
	ErrEmptyDocID = errors.New("document id cannot be empty")

	// ErrHashing indicates a document's content could not be fingerprinted.
	// It is fatal for that document only, never for the whole batch.
	ErrHashing = errors.New("content hashing failed")

	// ErrInvalidStrategy indicates an unknown Strategy value.
	ErrInvalidStrategy = errors.New("invalid strategy")
)
