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

package steps

import (
	"fmt"

	"github.com/cloudwego/boardreview/internal/pipeline"
	"github.com/cloudwego/boardreview/llm"
	"github.com/cloudwego/eino/callbacks"
)

// BoardOptions selects the board members and their order.
type BoardOptions struct {
	// Workflow lists stage names; it must end with StageVerdict.
	// DefaultWorkflow is used when empty.
	Workflow []string
	// Experts overrides title/focus per stage name.
	Experts map[string]Override
	// Handlers receive graph callbacks for every stage.
	Handlers []callbacks.Handler
}

// NewBoard wires one step per workflow entry around model and returns the
// validated pipeline.
func NewBoard(model llm.Generator, opts BoardOptions) (*pipeline.Pipeline, error) {
	if model == nil {
		return nil, fmt.Errorf("board: model is nil")
	}
	workflow := opts.Workflow
	if len(workflow) == 0 {
		workflow = DefaultWorkflow
	}
	def, err := pipeline.NewLinear(workflow...)
	if err != nil {
		return nil, err
	}
	if def.Terminal != StageVerdict {
		return nil, fmt.Errorf("%w: workflow must end with %s, got %s", pipeline.ErrNoTerminal, StageVerdict, def.Terminal)
	}

	steps := make([]pipeline.Step, 0, len(workflow))
	upstream := make([]Role, 0, len(workflow)-1)
	for _, name := range workflow[:len(workflow)-1] {
		role, err := ResolveRole(name, opts.Experts[name])
		if err != nil {
			return nil, err
		}
		upstream = append(upstream, role)
		steps = append(steps, &ExpertStep{Role: role, Model: model})
	}
	steps = append(steps, &VerdictStep{Upstream: upstream, Model: model})

	return pipeline.New(def, steps, pipeline.Options{Handlers: opts.Handlers})
}
