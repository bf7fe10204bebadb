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

package llm

import (
	"context"
	"errors"

	"github.com/cloudwego/boardreview/internal/utils"
	"github.com/cloudwego/boardreview/llm/log"
	"github.com/cloudwego/eino/schema"
)

var _ Generator = (*ChatClient)(nil)

// ErrEmptyResponse is returned when the backend answers without a message.
var ErrEmptyResponse = errors.New("llm returned nil response")

// ChatClient sends a prompt as a single user message and returns the reply
// content verbatim. It holds no conversation state and never retries.
type ChatClient struct {
	name  string
	model ChatModel
}

func NewChatClient(name string, model ChatModel) *ChatClient {
	return &ChatClient{name: name, model: model}
}

// NewChatClientFromConfig builds the backend from cfg and wraps it.
func NewChatClientFromConfig(cfg ModelConfig) (*ChatClient, error) {
	cm, err := NewChatModel(cfg)
	if err != nil {
		return nil, err
	}
	name := cfg.Name
	if name == "" {
		name = cfg.ModelName
	}
	return NewChatClient(name, cm), nil
}

func (c *ChatClient) Call(ctx context.Context, input string) (string, error) {
	log.Debug("[User] %s", input)
	out, err := c.model.Generate(ctx, []*schema.Message{schema.UserMessage(input)})
	if err != nil {
		return "", utils.WrapError(err, "model %s generate", c.name)
	}
	if out == nil {
		return "", utils.WrapError(ErrEmptyResponse, "model %s generate", c.name)
	}
	log.Debug("[Assistant] %s", out.Content)
	return out.Content, nil
}
