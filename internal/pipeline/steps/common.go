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

// Package steps holds the bodies of every pipeline step and the table that
// maps a workflow to its ordered steps.
package steps

import (
	"fmt"

	"github.com/cloudwego/gencoder/internal/console"
	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/internal/pipeline"
	"github.com/cloudwego/gencoder/internal/store"
	"github.com/cloudwego/gencoder/internal/utils"
	"github.com/cloudwego/gencoder/llm"
	"github.com/cloudwego/gencoder/llm/prompt"
)

// ErrNoPrompt is returned before any model call when the project has no prompt.
var ErrNoPrompt = store.ErrNoPrompt

// Keys written to the memory store.
const (
	SpecKey      = "specification"
	UnitTestsKey = "unit_tests"
)

// Workspace and input keys shared by several steps.
const (
	RunScript   = "run.sh"
	FeedbackKey = "feedback"
)

// Log names. A step's conversation is stored in logs under its name.
const (
	NameSimpleGen         = "simple_gen"
	NameClarify           = "clarify"
	NameGenSpec           = "gen_spec"
	NameRespec            = "respec"
	NameGenUnitTests      = "gen_unit_tests"
	NameGenClarifiedCode  = "gen_clarified_code"
	NameGenCode           = "gen_code"
	NameFixCode           = "fix_code"
	NameGenEntrypoint     = "gen_entrypoint"
	NameExecuteEntrypoint = "execute_entrypoint"
	NameHumanReview       = "human_review"
	NameUseFeedback       = "use_feedback"
)

func setupSysPrompt(st *pipeline.PipelineState) (string, error) {
	gen, err := preprompt(st, prompt.Generate)
	if err != nil {
		return "", err
	}
	philosophy, err := preprompt(st, prompt.Philosophy)
	if err != nil {
		return "", err
	}
	return gen + "\nUseful to know:\n" + philosophy, nil
}

func preprompt(st *pipeline.PipelineState, name string) (string, error) {
	p, err := st.DBs.Preprompts.Get(name)
	if err != nil {
		return "", utils.WrapErrorf(err, "preprompt %s", name)
	}
	return p, nil
}

func getPrompt(st *pipeline.PipelineState) (string, error) {
	p, legacy, err := store.Prompt(st.DBs.Input)
	if err != nil {
		return "", err
	}
	if legacy {
		log.Warn("reading the prompt from main_prompt; please rename it to prompt")
		if st.Console != nil {
			st.Console.Println(console.Red("Please put the prompt in the file `prompt`, not `main_prompt`"))
			st.Console.Println()
		}
	}
	return p, nil
}

// mustGet reads a key an earlier step was expected to write.
func mustGet(db store.DB, ns, key string) (string, error) {
	v, err := db.Get(key)
	if err != nil {
		return "", utils.WrapErrorf(err, "%s[%s]", ns, key)
	}
	return v, nil
}

// loadLog decodes the conversation an earlier step left in logs.
func loadLog(st *pipeline.PipelineState, step string) (llm.Conversation, error) {
	raw, err := mustGet(st.DBs.Logs, "logs", step)
	if err != nil {
		return nil, err
	}
	conv, err := llm.UnmarshalConversation(raw)
	if err != nil {
		return nil, utils.WrapErrorf(err, "decode logs[%s]", step)
	}
	return conv, nil
}

func lastContent(conv llm.Conversation) string {
	m, _ := conv.Last()
	return m.Content
}

func instructions(p string) string { return "Instructions: " + p }

func specification(s string) string { return fmt.Sprintf("Specification:\n\n%s", s) }

func unitTests(s string) string { return fmt.Sprintf("Unit tests:\n\n%s", s) }

func show(st *pipeline.PipelineState, a ...any) {
	if st.Console != nil {
		st.Console.Println(a...)
	}
}
