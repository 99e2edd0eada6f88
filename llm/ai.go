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
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"

	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/internal/utils"
)

var _ Assistant = (*AI)(nil)

// ErrEmptyReply is returned when the model answers without any content.
var ErrEmptyReply = errors.New("llm: empty reply from model")

type AIOptions struct {
	// ModelName is reported in callbacks and learnings.
	ModelName   string
	Temperature *float32
	// Echo, if set, receives every assistant reply.
	Echo io.Writer
}

// AI drives a chat model one turn at a time. It never retries: a failed
// turn is returned to the caller as is.
type AI struct {
	model model.BaseChatModel
	opts  AIOptions
}

func NewAI(cm model.BaseChatModel, opts AIOptions) *AI {
	return &AI{model: cm, opts: opts}
}

func (a *AI) ModelName() string { return a.opts.ModelName }

// Temperature returns the sampling temperature, 0 when left to the provider.
func (a *AI) Temperature() float32 {
	if a.opts.Temperature == nil {
		return 0
	}
	return *a.opts.Temperature
}

func (a *AI) Start(ctx context.Context, system, user string) (Conversation, error) {
	return a.Next(ctx, Conversation{SystemMessage(system)}, user)
}

func (a *AI) Next(ctx context.Context, conv Conversation, prompt string) (Conversation, error) {
	msgs := conv.Append()
	if prompt != "" {
		msgs = msgs.Append(UserMessage(prompt))
	}
	log.Debug("[%s] %d messages, last: %s", a.opts.ModelName, len(msgs), tail(msgs))

	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      a.opts.ModelName,
		Type:      "AI",
		Component: components.ComponentOfChatModel,
	}, CallbackHandler{})

	var opts []model.Option
	if a.opts.Temperature != nil {
		opts = append(opts, model.WithTemperature(*a.opts.Temperature))
	}
	out, err := a.model.Generate(ctx, msgs.toSchema(), opts...)
	if err != nil {
		return nil, utils.WrapError(err, "chat model generate")
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return nil, ErrEmptyReply
	}
	if a.opts.Echo != nil {
		fmt.Fprintln(a.opts.Echo, out.Content)
	}
	return msgs.Append(AssistantMessage(out.Content)), nil
}

func tail(c Conversation) string {
	m, ok := c.Last()
	if !ok {
		return ""
	}
	s := m.Content
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return string(m.Role) + ": " + s
}
