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

	"github.com/cloudwego/gencoder/internal/chat"
	"github.com/cloudwego/gencoder/internal/pipeline"
	"github.com/cloudwego/gencoder/internal/utils"
	"github.com/cloudwego/gencoder/llm"
	"github.com/cloudwego/gencoder/llm/prompt"
)

// materialize writes the last message of conv into the workspace.
func materialize(st *pipeline.PipelineState, conv llm.Conversation) error {
	if _, err := chat.ToFiles(lastContent(conv), st.DBs.Workspace); err != nil {
		return utils.WrapError(err, "write workspace")
	}
	return nil
}

// SimpleGen runs the prompt once and writes the answer into the workspace.
type SimpleGen struct{}

func (SimpleGen) Name() string { return NameSimpleGen }

func (SimpleGen) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	p, err := getPrompt(st)
	if err != nil {
		return nil, err
	}
	sys, err := setupSysPrompt(st)
	if err != nil {
		return nil, err
	}
	conv, err := st.AI.Start(ctx, sys, p)
	if err != nil {
		return nil, err
	}
	return conv, materialize(st, conv)
}

// GenSpec turns the prompt into a specification kept in memory.
type GenSpec struct{}

func (GenSpec) Name() string { return NameGenSpec }

func (GenSpec) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	p, err := getPrompt(st)
	if err != nil {
		return nil, err
	}
	sys, err := setupSysPrompt(st)
	if err != nil {
		return nil, err
	}
	spec, err := preprompt(st, prompt.Spec)
	if err != nil {
		return nil, err
	}
	conv := llm.Conversation{llm.SystemMessage(sys), llm.SystemMessage(instructions(p))}
	conv, err = st.AI.Next(ctx, conv, spec)
	if err != nil {
		return nil, err
	}
	return conv, st.DBs.Memory.Set(SpecKey, lastContent(conv))
}

// Respec reviews the gen_spec conversation and rewrites the specification.
type Respec struct{}

func (Respec) Name() string { return NameRespec }

func (Respec) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	conv, err := loadLog(st, NameGenSpec)
	if err != nil {
		return nil, err
	}
	respec, err := preprompt(st, prompt.Respec)
	if err != nil {
		return nil, err
	}
	conv = conv.Append(llm.SystemMessage(respec))
	if conv, err = st.AI.Next(ctx, conv, ""); err != nil {
		return nil, err
	}
	if conv, err = st.AI.Next(ctx, conv, prompt.RewriteSpec); err != nil {
		return nil, err
	}
	return conv, st.DBs.Memory.Set(SpecKey, lastContent(conv))
}

// GenUnitTests writes tests for the specification.
type GenUnitTests struct{}

func (GenUnitTests) Name() string { return NameGenUnitTests }

func (GenUnitTests) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	p, err := getPrompt(st)
	if err != nil {
		return nil, err
	}
	sys, err := setupSysPrompt(st)
	if err != nil {
		return nil, err
	}
	spec, err := mustGet(st.DBs.Memory, "memory", SpecKey)
	if err != nil {
		return nil, err
	}
	ask, err := preprompt(st, prompt.UnitTests)
	if err != nil {
		return nil, err
	}
	conv := llm.Conversation{
		llm.SystemMessage(sys),
		llm.UserMessage(instructions(p)),
		llm.UserMessage(specification(spec)),
	}
	if conv, err = st.AI.Next(ctx, conv, ask); err != nil {
		return nil, err
	}
	tests := lastContent(conv)
	if err := st.DBs.Memory.Set(UnitTestsKey, tests); err != nil {
		return nil, err
	}
	return conv, materialize(st, conv)
}

// GenClarifiedCode writes code from the clarify conversation.
type GenClarifiedCode struct{}

func (GenClarifiedCode) Name() string { return NameGenClarifiedCode }

func (GenClarifiedCode) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	qa, err := loadLog(st, NameClarify)
	if err != nil {
		return nil, err
	}
	sys, err := setupSysPrompt(st)
	if err != nil {
		return nil, err
	}
	useQA, err := preprompt(st, prompt.UseQA)
	if err != nil {
		return nil, err
	}
	conv := llm.Conversation{llm.SystemMessage(sys)}
	if len(qa) > 1 {
		conv = conv.Append(qa[1:]...)
	}
	if conv, err = st.AI.Next(ctx, conv, useQA); err != nil {
		return nil, err
	}
	return conv, materialize(st, conv)
}

// GenCode writes code from the specification and unit tests.
type GenCode struct{}

func (GenCode) Name() string { return NameGenCode }

func (GenCode) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	p, err := getPrompt(st)
	if err != nil {
		return nil, err
	}
	sys, err := setupSysPrompt(st)
	if err != nil {
		return nil, err
	}
	spec, err := mustGet(st.DBs.Memory, "memory", SpecKey)
	if err != nil {
		return nil, err
	}
	tests, err := mustGet(st.DBs.Memory, "memory", UnitTestsKey)
	if err != nil {
		return nil, err
	}
	useQA, err := preprompt(st, prompt.UseQA)
	if err != nil {
		return nil, err
	}
	conv := llm.Conversation{
		llm.SystemMessage(sys),
		llm.UserMessage(instructions(p)),
		llm.UserMessage(specification(spec)),
		llm.UserMessage(unitTests(tests)),
	}
	if conv, err = st.AI.Next(ctx, conv, useQA); err != nil {
		return nil, err
	}
	return conv, materialize(st, conv)
}

// FixCode asks the model to repair the output of gen_code.
type FixCode struct{}

func (FixCode) Name() string { return NameFixCode }

func (FixCode) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	prev, err := loadLog(st, NameGenCode)
	if err != nil {
		return nil, err
	}
	code, ok := prev.Last()
	if !ok {
		return nil, utils.WrapErrorf(llm.ErrUnsupportedLog, "logs[%s] is empty", NameGenCode)
	}
	p, err := getPrompt(st)
	if err != nil {
		return nil, err
	}
	sys, err := setupSysPrompt(st)
	if err != nil {
		return nil, err
	}
	fix, err := preprompt(st, prompt.FixCode)
	if err != nil {
		return nil, err
	}
	conv := llm.Conversation{
		llm.SystemMessage(sys),
		llm.UserMessage(instructions(p)),
		llm.UserMessage(code.Content),
		llm.SystemMessage(fix),
	}
	if conv, err = st.AI.Next(ctx, conv, prompt.FixErrors); err != nil {
		return nil, err
	}
	return conv, materialize(st, conv)
}

// UseFeedback improves the previous output with input[feedback].
type UseFeedback struct{}

func (UseFeedback) Name() string { return NameUseFeedback }

func (UseFeedback) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	p, err := getPrompt(st)
	if err != nil {
		return nil, err
	}
	feedback, err := mustGet(st.DBs.Input, "input", FeedbackKey)
	if err != nil {
		return nil, err
	}
	output, err := mustGet(st.DBs.Workspace, "workspace", chat.AllOutput)
	if err != nil {
		return nil, err
	}
	sys, err := setupSysPrompt(st)
	if err != nil {
		return nil, err
	}
	use, err := preprompt(st, prompt.UseFeedback)
	if err != nil {
		return nil, err
	}
	conv := llm.Conversation{
		llm.SystemMessage(sys),
		llm.UserMessage(instructions(p)),
		llm.AssistantMessage(output),
		llm.SystemMessage(use),
	}
	if conv, err = st.AI.Next(ctx, conv, feedback); err != nil {
		return nil, err
	}
	return conv, materialize(st, conv)
}
