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
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
)

// ModelConfig selects and tunes the chat model behind the AI.
type ModelConfig struct {
	APIType     ModelType     `json:"type" mapstructure:"type"`
	BaseURL     string        `json:"base_url" mapstructure:"base_url"`
	APIKey      string        `json:"api_key" mapstructure:"api_key"`
	ModelName   string        `json:"name" mapstructure:"name"` // the endpoint of the model, like `gpt-4o`
	Temperature *float32      `json:"temperature" mapstructure:"temperature"`
	MaxTokens   int           `json:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout"` // HTTP request timeout, default: 600s
}

type ModelType string

func NewModelType(t string) ModelType {
	switch strings.ToLower(t) {
	case "ollama":
		return ModelTypeOllama
	case "ark", "doubao":
		return ModelTypeARK
	case "openai", "gpt":
		return ModelTypeOpenAI
	case "claude", "anthropic":
		return ModelTypeClaude
	case "dashscope", "qwen", "tongyi":
		return ModelTypeDashScope
	case "deepseek":
		return ModelTypeDeepSeek
	}
	return ModelTypeUnknown
}

const (
	ModelTypeUnknown   ModelType = ""
	ModelTypeOllama    ModelType = "ollama"
	ModelTypeARK       ModelType = "ark"
	ModelTypeOpenAI    ModelType = "openai"
	ModelTypeClaude    ModelType = "claude"
	ModelTypeDashScope ModelType = "dashscope" // 阿里云 DashScope (通义千问)
	ModelTypeDeepSeek  ModelType = "deepseek"
)

// ChatModel is the interface for making LLM backend.
type ChatModel interface {
	model.ToolCallingChatModel
}

// Assistant is the conversational capability the pipeline steps drive.
// Every Start or Next call invokes the backing model exactly once.
type Assistant interface {
	// Start begins a [system, user] exchange and appends the reply.
	Start(ctx context.Context, system, user string) (Conversation, error)
	// Next appends prompt as a user message (unless it is empty), asks the
	// model and appends the reply.
	Next(ctx context.Context, conv Conversation, prompt string) (Conversation, error)
}
