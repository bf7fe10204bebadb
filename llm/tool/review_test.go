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
	"encoding/json"
	"strings"
	"testing"

	"github.com/cloudwego/boardreview/internal/pipeline"
	"github.com/cloudwego/boardreview/internal/pipeline/steps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firstLineModel struct{ fail bool }

func (m firstLineModel) Call(ctx context.Context, input string) (string, error) {
	if m.fail {
		return "", assert.AnError
	}
	line, _, _ := strings.Cut(input, "\n")
	return "re: " + line, nil
}

func newTools(t *testing.T, fail bool) *BoardTools {
	t.Helper()
	board, err := steps.NewBoard(firstLineModel{fail: fail}, steps.BoardOptions{Workflow: steps.ClassicWorkflow})
	require.NoError(t, err)
	return NewBoardTools(board)
}

func TestBoardTools_Review(t *testing.T) {
	resp, err := newTools(t, false).Review(context.Background(), BoardReviewReq{Proposal: "cams"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "re: Board Review Summary:", resp.FinalVerdict)
	require.Len(t, resp.Feedback, 3)
	assert.Equal(t, StageFeedback{
		Stage:    steps.StageLegal,
		Field:    pipeline.FieldLegal,
		Feedback: "re: You are a Legal Advisor.",
	}, resp.Feedback[0])
	assert.Equal(t, steps.StagePolicy, resp.Feedback[2].Stage)
}

func TestBoardTools_ReviewFailure(t *testing.T) {
	resp, err := newTools(t, true).Review(context.Background(), BoardReviewReq{Proposal: "cams"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, resp)
}

func TestBoardTools_ListStages(t *testing.T) {
	resp, err := newTools(t, false).ListStages(context.Background(), ListStagesReq{})
	require.NoError(t, err)
	require.Len(t, resp.Stages, 4)
	assert.Equal(t, "Legal Advisor", resp.Stages[0].Title)
	assert.Equal(t, pipeline.FieldVerdict, resp.Stages[3].Field)
	assert.Empty(t, resp.Stages[3].Title)
}

func TestSchemas(t *testing.T) {
	var s struct {
		Type       string                    `json:"type"`
		Properties map[string]map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(SchemaBoardReview, &s))
	assert.Equal(t, "object", s.Type)
	require.Contains(t, s.Properties, "proposal")
	assert.Equal(t, "string", s.Properties["proposal"]["type"])
	assert.Contains(t, s.Properties["proposal"]["description"], "proposal")
}
