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
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/gencoder/internal/chat"
	"github.com/cloudwego/gencoder/internal/console"
	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/internal/pipeline"
	"github.com/cloudwego/gencoder/internal/utils"
	"github.com/cloudwego/gencoder/llm"
	"github.com/cloudwego/gencoder/llm/prompt"
)

// GenEntrypoint asks for the shell commands that install and run the
// workspace and stores them as run.sh.
type GenEntrypoint struct{}

func (GenEntrypoint) Name() string { return NameGenEntrypoint }

func (GenEntrypoint) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	output, err := mustGet(st.DBs.Workspace, "workspace", chat.AllOutput)
	if err != nil {
		return nil, err
	}
	conv, err := st.AI.Start(ctx, prompt.Entrypoint, "Information about the codebase:\n\n"+output)
	if err != nil {
		return nil, err
	}
	show(st)
	script := strings.Join(chat.CodeBlocks(lastContent(conv)), "\n")
	if err := st.DBs.Workspace.Set(RunScript, script); err != nil {
		return nil, utils.WrapErrorf(err, "write workspace[%s]", RunScript)
	}
	return conv, nil
}

// ExecuteEntrypoint runs run.sh in the workspace after the human agrees.
type ExecuteEntrypoint struct{}

func (ExecuteEntrypoint) Name() string { return NameExecuteEntrypoint }

func (ExecuteEntrypoint) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	script, err := mustGet(st.DBs.Workspace, "workspace", RunScript)
	if err != nil {
		return nil, err
	}
	c := st.Console
	c.Println("Do you want to execute this code?")
	c.Println()
	c.Println(script)
	c.Println()
	answer, err := c.ReadLine("If yes, press enter. Otherwise, type \"no\"\n\n")
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, utils.WrapError(err, "read confirmation")
	}
	switch {
	case errors.Is(err, io.EOF):
		c.Println("No answer, not executing the code.")
		return llm.Conversation{}, nil
	case !confirmed(answer):
		c.Println("Ok, not executing the code.")
		return llm.Conversation{}, nil
	}

	c.Println("Executing the code...")
	c.Println()
	c.Println(console.Green("Note: If it does not work as expected, consider running the code in another way than above."))
	c.Println()
	c.Println("You can press ctrl+c *once* to stop the execution.")
	c.Println()

	res, err := st.Executor.Run(ctx, st.DBs.Workspace.Path(), "bash "+RunScript)
	if err != nil {
		return nil, utils.WrapError(err, "execute entrypoint")
	}
	if res.Interrupted {
		c.Println()
		c.Println("Stopping execution.")
		c.Println("Execution stopped.")
		c.Println()
	}
	log.Debug("entrypoint finished, exit code %d", res.ExitCode)
	return llm.Conversation{}, nil
}

func confirmed(answer string) bool {
	switch strings.TrimSpace(answer) {
	case "", "y", "yes":
		return true
	}
	return false
}
