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
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gencoder/llm/llmtest"
)

func TestAI_Start(t *testing.T) {
	m := llmtest.Fixed("hi there")
	var echo bytes.Buffer
	ai := NewAI(m, AIOptions{ModelName: "stub", Echo: &echo})

	conv, err := ai.Start(context.Background(), "sys", "hello")
	require.NoError(t, err)
	assert.Equal(t, Conversation{
		SystemMessage("sys"),
		UserMessage("hello"),
		AssistantMessage("hi there"),
	}, conv)
	assert.Equal(t, 1, m.Calls())
	assert.Equal(t, "hi there\n", echo.String())

	in := m.Input(0)
	require.Len(t, in, 2)
	assert.Equal(t, schema.System, in[0].Role)
	assert.Equal(t, schema.User, in[1].Role)
}

func TestAI_NextWithoutPrompt(t *testing.T) {
	m := &llmtest.ScriptedModel{Replies: []string{"one", "two"}}
	ai := NewAI(m, AIOptions{})

	conv := Conversation{SystemMessage("sys"), UserMessage("q")}
	out, err := ai.Next(context.Background(), conv, "")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Len(t, conv, 2, "input conversation must not change")

	out, err = ai.Next(context.Background(), out, "more")
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.Equal(t, AssistantMessage("two"), out[4])
	assert.Equal(t, 2, m.Calls())
}

func TestAI_Errors(t *testing.T) {
	boom := errors.New("boom")
	ai := NewAI(&llmtest.ScriptedModel{Err: boom}, AIOptions{})
	_, err := ai.Start(context.Background(), "s", "u")
	assert.ErrorIs(t, err, boom)

	ai = NewAI(&llmtest.ScriptedModel{Replies: []string{"  \n"}}, AIOptions{})
	_, err = ai.Start(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestNewModelType(t *testing.T) {
	assert.Equal(t, ModelTypeOpenAI, NewModelType("GPT"))
	assert.Equal(t, ModelTypeClaude, NewModelType("anthropic"))
	assert.Equal(t, ModelTypeUnknown, NewModelType("nope"))
}

func TestNewChatModel_Unsupported(t *testing.T) {
	_, err := NewChatModel(context.Background(), ModelConfig{APIType: "nope"})
	assert.Error(t, err)
}
