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
	"context"
	"fmt"

	"github.com/cloudwego/boardreview/internal/pipeline"
	"github.com/cloudwego/boardreview/llm"
	"github.com/cloudwego/boardreview/llm/log"
	"github.com/cloudwego/boardreview/llm/prompt"
)

var (
	_ pipeline.Step          = (*ExpertStep)(nil)
	_ pipeline.PromptBuilder = (*ExpertStep)(nil)
)

// ExpertStep asks the model for one board member's opinion of the proposal.
type ExpertStep struct {
	Role  Role
	Model llm.Generator
}

type expertPromptData struct {
	Title    string
	Focus    string
	Proposal string
}

// Name implements pipeline.Step.
func (s *ExpertStep) Name() string { return s.Role.Name }

// Output implements pipeline.Step.
func (s *ExpertStep) Output() pipeline.Field { return s.Role.Field }

// Prompt implements pipeline.PromptBuilder.
func (s *ExpertStep) Prompt(rec pipeline.ReviewRecord) (string, error) {
	return prompt.Render(s.Role.Template, expertPromptData{
		Title:    s.Role.Title,
		Focus:    s.Role.Focus,
		Proposal: rec.Proposal(),
	})
}

// Run implements pipeline.Step.
func (s *ExpertStep) Run(ctx context.Context, rec pipeline.ReviewRecord) (pipeline.ReviewRecord, error) {
	msg, err := s.Prompt(rec)
	if err != nil {
		return rec, err
	}
	log.Info("Inside %s", s.Role.Name)
	resp, err := s.Model.Call(ctx, msg)
	if err != nil {
		return rec, fmt.Errorf("%s: %w", s.Role.Title, err)
	}
	return rec.With(s.Role.Field, resp)
}
