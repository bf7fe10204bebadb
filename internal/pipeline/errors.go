// Copyright 2025 ByteDance Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import "errors"

// Record errors.
var (
	ErrUnknownField    = errors.New("unknown review field")
	ErrFieldImmutable  = errors.New("review field is immutable")
	ErrFieldAlreadySet = errors.New("review field already written")
)

// Definition errors.
var (
	ErrEmptyDefinition      = errors.New("pipeline definition has no stages")
	ErrNoTerminal           = errors.New("pipeline definition has no terminal stage")
	ErrTerminalHasSuccessor = errors.New("terminal stage has an outgoing edge")
	ErrDuplicateStage       = errors.New("duplicate stage name")
	ErrBranching            = errors.New("stage has more than one predecessor")
	ErrCycle                = errors.New("cyclic transition detected")
	ErrUnreachable          = errors.New("stage is not reachable from start")
	ErrUnknownStage         = errors.New("stage has no registered step")
	ErrFieldAliased         = errors.New("output field is written by more than one stage")
)

// Execution errors.
var (
	ErrOutputNotWritten = errors.New("stage did not write its output field")
	ErrFieldTampered    = errors.New("stage modified a field it does not own")
	ErrMissingFeedback  = errors.New("upstream feedback has not been written")
)
