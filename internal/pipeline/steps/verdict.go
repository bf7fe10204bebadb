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
	_ pipeline.Step          = (*VerdictStep)(nil)
	_ pipeline.PromptBuilder = (*VerdictStep)(nil)
)

// VerdictStep summarises every upstream opinion into the final verdict. The
// answer is stored as returned; it is not parsed.
type VerdictStep struct {
	// Upstream are the expert roles whose feedback goes into the summary,
	// in pipeline order.
	Upstream []Role
	Model    llm.Generator
}

type labeledFeedback struct {
	Label string
	Text  string
}

type verdictPromptData struct {
	Proposal string
	Feedback []labeledFeedback
}

// Name implements pipeline.Step.
func (s *VerdictStep) Name() string { return StageVerdict }

// Output implements pipeline.Step.
func (s *VerdictStep) Output() pipeline.Field { return pipeline.FieldVerdict }

// Prompt implements pipeline.PromptBuilder.
func (s *VerdictStep) Prompt(rec pipeline.ReviewRecord) (string, error) {
	data := verdictPromptData{
		Proposal: rec.Proposal(),
		Feedback: make([]labeledFeedback, 0, len(s.Upstream)),
	}
	for _, r := range s.Upstream {
		text, ok := rec.Get(r.Field)
		if !ok {
			return "", fmt.Errorf("%w: %s", pipeline.ErrMissingFeedback, r.Field)
		}
		data.Feedback = append(data.Feedback, labeledFeedback{Label: r.Label, Text: text})
	}
	return prompt.Render(prompt.TemplateVerdict, data)
}

// Run implements pipeline.Step.
func (s *VerdictStep) Run(ctx context.Context, rec pipeline.ReviewRecord) (pipeline.ReviewRecord, error) {
	msg, err := s.Prompt(rec)
	if err != nil {
		return rec, err
	}
	log.Info("Inside %s", StageVerdict)
	resp, err := s.Model.Call(ctx, msg)
	if err != nil {
		return rec, fmt.Errorf("verdict: %w", err)
	}
	return rec.With(pipeline.FieldVerdict, resp)
}
