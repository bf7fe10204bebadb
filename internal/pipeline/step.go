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

import (
	"context"
)

// Step is one stage of the board. Run reads the record, asks the model and
// returns a copy with exactly its Output field written. On error the input
// record is returned unchanged.
type Step interface {
	Name() string
	Output() Field
	Run(ctx context.Context, rec ReviewRecord) (ReviewRecord, error)
}

// PromptBuilder is implemented by steps whose prompt can be rendered
// without calling the model. The runner records a digest of it per stage.
type PromptBuilder interface {
	Prompt(rec ReviewRecord) (string, error)
}
