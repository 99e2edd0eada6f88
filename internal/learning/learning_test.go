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

package learning

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gencoder/internal/console"
	"github.com/cloudwego/gencoder/internal/store"
	"github.com/cloudwego/gencoder/llm"
)

func TestHumanInput_RepromptsOnInvalid(t *testing.T) {
	var out bytes.Buffer
	r, err := HumanInput(console.NewTerminal(strings.NewReader("x\ny\ny\n"), &out))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out.String(), invalidChoice))
	require.NotNil(t, r.Ran)
	assert.True(t, *r.Ran)
	require.NotNil(t, r.Perfect)
	assert.True(t, *r.Perfect)
	assert.Nil(t, r.Works)
	assert.Equal(t, "y, y, ", r.Raw)
	assert.Empty(t, r.Comments)
}

func TestHumanInput_DidNotRun(t *testing.T) {
	r, err := HumanInput(console.NewTerminal(strings.NewReader("n\ncrashed on start\n"), &bytes.Buffer{}))
	require.NoError(t, err)
	require.NotNil(t, r.Ran)
	assert.False(t, *r.Ran)
	assert.Nil(t, r.Perfect)
	assert.Nil(t, r.Works)
	assert.Equal(t, "crashed on start", r.Comments)
	assert.Equal(t, "n, , ", r.Raw)
}

func TestHumanInput_Uncertain(t *testing.T) {
	r, err := HumanInput(console.NewTerminal(strings.NewReader("y\nn\nu\n"), &bytes.Buffer{}))
	require.NoError(t, err)
	assert.True(t, *r.Ran)
	assert.False(t, *r.Perfect)
	assert.Nil(t, r.Works)
}

func TestReview_JSON(t *testing.T) {
	yes := true
	r := &Review{Ran: &yes, Comments: "ok", Raw: "y, , "}
	s, err := r.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"ran":true,"perfect":null,"works":null,"comments":"ok","raw":"y, , "}`, s)

	back, err := ParseReview(s)
	require.NoError(t, err)
	assert.Equal(t, r, back)
}

func TestExtract(t *testing.T) {
	dbs := store.NewMemDBs(map[string]string{"prompt": "hello world", "feedback": "more tests"}, nil)
	conv, err := llm.MarshalConversation(llm.Conversation{
		llm.SystemMessage("sys"),
		llm.AssistantMessage("main.py\n```\nprint(1)\n```"),
	})
	require.NoError(t, err)
	require.NoError(t, dbs.Logs.Set("simple_gen", conv))
	empty, err := llm.MarshalConversation(nil)
	require.NoError(t, err)
	require.NoError(t, dbs.Logs.Set("human_review", empty))
	require.NoError(t, dbs.Memory.Set(ReviewKey, `{"ran":false,"perfect":null,"works":null,"comments":"","raw":"n, , "}`))
	require.NoError(t, dbs.Workspace.Set("all_output.txt", "everything"))

	l, err := Extract(RunInfo{
		Model:     "gpt-4o",
		Steps:     []string{"simple_gen", "human_review"},
		StepsHash: "abc",
		Session:   "s-1",
	}, dbs)
	require.NoError(t, err)

	assert.Equal(t, "hello world", l.Prompt)
	assert.Equal(t, `["simple_gen","human_review"]`, l.Steps)
	assert.Equal(t, "--- simple_gen ---\n\nsystem:\n\nsys\nassistant:\n\nmain.py\n```\nprint(1)\n```\n--- human_review ---\n\n", l.Logs)
	assert.Equal(t, "everything", l.Workspace)
	require.NotNil(t, l.Feedback)
	assert.Equal(t, "more tests", *l.Feedback)
	require.NotNil(t, l.Review)
	assert.False(t, *l.Review.Ran)
	assert.Equal(t, Version, l.Version)

	require.NoError(t, Save(l, dbs.Memory))
	raw, err := dbs.Memory.Get(LearningKey)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "s-1", decoded["session"])
}

func TestLogsToString_MissingStep(t *testing.T) {
	_, err := LogsToString([]string{"gen_code"}, store.NewMemDB(nil))
	assert.ErrorIs(t, err, store.ErrNotFound)
}
