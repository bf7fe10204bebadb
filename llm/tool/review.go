/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/boardreview/internal/pipeline"
	"github.com/cloudwego/boardreview/internal/pipeline/steps"
)

const (
	ToolBoardReview = "board_review"
	DescBoardReview = "Put a proposal in front of the review board. Each board member (technical, ethics, legal, financial, policy) " +
		"gives feedback in turn and the board then returns a final verdict. The run stops at the first failing member."
	ToolListStages = "list_board_stages"
	DescListStages = "List the board members in the order they review a proposal, with the record field each one writes."
)

var (
	SchemaBoardReview = GetJSONSchema(BoardReviewReq{})
	SchemaListStages  = GetJSONSchema(ListStagesReq{})
)

type BoardReviewReq struct {
	Proposal string `json:"proposal" jsonschema:"description=the proposal text the board should review"`
}

type StageFeedback struct {
	Stage    string         `json:"stage"`
	Field    pipeline.Field `json:"field"`
	Feedback string         `json:"feedback"`
}

type BoardReviewResp struct {
	RunID        string          `json:"run_id"`
	Feedback     []StageFeedback `json:"feedback"`
	FinalVerdict string          `json:"final_verdict"`
}

type ListStagesReq struct{}

type StageInfo struct {
	Stage string         `json:"stage"`
	Title string         `json:"title,omitempty"`
	Focus string         `json:"focus,omitempty"`
	Field pipeline.Field `json:"field"`
}

type ListStagesResp struct {
	Stages []StageInfo `json:"stages"`
}

// BoardTools exposes one configured board to tool callers.
type BoardTools struct {
	board *pipeline.Pipeline
}

func NewBoardTools(board *pipeline.Pipeline) *BoardTools {
	return &BoardTools{board: board}
}

// Review runs the board over req.Proposal. A failed run returns an error
// and no verdict.
func (t *BoardTools) Review(ctx context.Context, req BoardReviewReq) (*BoardReviewResp, error) {
	run, err := t.board.Run(ctx, req.Proposal)
	if err != nil {
		return nil, err
	}
	return NewBoardReviewResp(t.board, run)
}

// ListStages describes the board in execution order.
func (t *BoardTools) ListStages(ctx context.Context, req ListStagesReq) (*ListStagesResp, error) {
	resp := &ListStagesResp{}
	for _, name := range t.board.Order() {
		step, _ := t.board.Step(name)
		info := StageInfo{Stage: name, Field: step.Output()}
		if e, ok := step.(*steps.ExpertStep); ok {
			info.Title = e.Role.Title
			info.Focus = e.Role.Focus
		}
		resp.Stages = append(resp.Stages, info)
	}
	return resp, nil
}

// NewBoardReviewResp flattens a completed run into the tool response.
func NewBoardReviewResp(board *pipeline.Pipeline, run *pipeline.Run) (*BoardReviewResp, error) {
	if !run.Completed() {
		return nil, fmt.Errorf("run %s has no verdict", run.ID)
	}
	resp := &BoardReviewResp{
		RunID:        run.ID,
		FinalVerdict: run.Record.FinalVerdict(),
	}
	for _, name := range board.Order() {
		step, _ := board.Step(name)
		if step.Output() == pipeline.FieldVerdict {
			continue
		}
		text, _ := run.Record.Get(step.Output())
		resp.Feedback = append(resp.Feedback, StageFeedback{
			Stage:    name,
			Field:    step.Output(),
			Feedback: text,
		})
	}
	return resp, nil
}
