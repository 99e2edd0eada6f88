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

// Package llmtest provides deterministic chat models for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var _ model.BaseChatModel = (*ScriptedModel)(nil)

// ErrScriptExhausted is returned once every scripted reply has been used
// and no Fallback is set.
var ErrScriptExhausted = errors.New("llmtest: no scripted reply left")

// ScriptedModel answers with Replies in order, then with Fallback.
type ScriptedModel struct {
	Replies  []string
	Fallback string
	// Err, if set, is returned by every Generate call.
	Err error

	mu     sync.Mutex
	inputs [][]*schema.Message
}

// Fixed returns a model that always answers reply.
func Fixed(reply string) *ScriptedModel {
	return &ScriptedModel{Fallback: reply}
}

func (m *ScriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, input)
	if m.Err != nil {
		return nil, m.Err
	}
	n := len(m.inputs) - 1
	switch {
	case n < len(m.Replies):
		return schema.AssistantMessage(m.Replies[n], nil), nil
	case m.Fallback != "":
		return schema.AssistantMessage(m.Fallback, nil), nil
	}
	return nil, ErrScriptExhausted
}

func (m *ScriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// Calls reports how many times Generate was invoked.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// Input returns the messages sent on the i-th call.
func (m *ScriptedModel) Input(i int) []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs[i]
}
