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

// Package cli wires configuration, stores, the model and the pipeline
// behind the gencoder command line.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/cobra"

	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/internal/shell"
	"github.com/cloudwego/gencoder/llm"
)

// Env holds what a command talks to. Tests replace the model and the
// executor.
type Env struct {
	In       io.Reader
	Out      io.Writer
	NewModel func(ctx context.Context, m llm.ModelConfig) (model.BaseChatModel, error)
	Executor shell.Executor
}

// DefaultEnv uses the terminal, the configured provider and bash.
func DefaultEnv() Env {
	return Env{
		In:  os.Stdin,
		Out: os.Stdout,
		NewModel: func(ctx context.Context, m llm.ModelConfig) (model.BaseChatModel, error) {
			return llm.NewChatModel(ctx, m)
		},
		Executor: shell.Bash{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
	}
}

type globalOptions struct {
	configFile string
	verbose    bool
}

func NewRootCmd(version string, env Env) *cobra.Command {
	g := &globalOptions{}
	cmd := &cobra.Command{
		Use:          "gencoder",
		Short:        "gencoder generates a codebase from a prompt, one step at a time",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.verbose {
				log.SetLogLevel(log.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&g.configFile, "config", "", "config file (default: <project>/gencoder.yaml)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newRunCmd(g, env))
	cmd.AddCommand(newServeCmd(g))
	cmd.AddCommand(newConfigsCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newVersionCmd(version))

	cmd.SetIn(env.In)
	cmd.SetOut(env.Out)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}
	return cmd
}
