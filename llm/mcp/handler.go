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

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/boardreview/internal/pipeline"
	"github.com/cloudwego/boardreview/internal/utils"
	"github.com/cloudwego/boardreview/llm/tool"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Tool struct {
	mcp.Tool
	Handler server.ToolHandlerFunc
}

func NewTool[R any, T any](name string, desc string, schema json.RawMessage, handler func(ctx context.Context, req R) (*T, error)) Tool {
	return Tool{
		Tool: mcp.NewToolWithRawSchema(name, desc, schema),
		Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var req R
			if err := request.BindArguments(&req); err != nil {
				return nil, err
			}
			var final string
			var isError bool
			if resp, err := handler(ctx, req); err != nil {
				isError = true
				final = err.Error()
			} else if js, err := utils.MarshalJSONBytes(resp); err != nil {
				isError = true
				final = err.Error()
			} else {
				final = string(js)
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(final),
				},
				IsError: isError,
			}, nil
		},
	}
}

func getBoardTools(board *tool.BoardTools) []Tool {
	return []Tool{
		NewTool(tool.ToolBoardReview, tool.DescBoardReview, tool.SchemaBoardReview, board.Review),
		NewTool(tool.ToolListStages, tool.DescListStages, tool.SchemaListStages, board.ListStages),
	}
}

const (
	PromptBoardMember = "board_member"

	argStage    = "stage"
	argProposal = "proposal"
)

func boardMemberPrompt() mcp.Prompt {
	return mcp.NewPrompt(PromptBoardMember,
		mcp.WithPromptDescription("The prompt one board member receives for a proposal"),
		mcp.WithArgument(argStage,
			mcp.ArgumentDescription("stage name, e.g. legal_advisor"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument(argProposal,
			mcp.ArgumentDescription("the proposal text"),
			mcp.RequiredArgument(),
		),
	)
}

func handleBoardMemberPrompt(board *pipeline.Pipeline) server.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		stage := request.Params.Arguments[argStage]
		step, ok := board.Step(stage)
		if !ok {
			return nil, fmt.Errorf("%w: %s", pipeline.ErrUnknownStage, stage)
		}
		pb, ok := step.(pipeline.PromptBuilder)
		if !ok {
			return nil, fmt.Errorf("stage %s has no standalone prompt", stage)
		}
		text, err := pb.Prompt(pipeline.NewReviewRecord(request.Params.Arguments[argProposal]))
		if err != nil {
			return nil, err
		}
		return &mcp.GetPromptResult{
			Description: fmt.Sprintf("Prompt of board stage %s", stage),
			Messages: []mcp.PromptMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.TextContent{
						Type: "text",
						Text: text,
					},
				},
			},
		}, nil
	}
}
