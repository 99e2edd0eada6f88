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

package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cloudwego/gencoder/internal/config"
	"github.com/cloudwego/gencoder/internal/store"
	"github.com/cloudwego/gencoder/llm/mcp"
	"github.com/cloudwego/gencoder/llm/prompt"
	"github.com/cloudwego/gencoder/version"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	v := config.New()
	cmd := &cobra.Command{
		Use:   "serve <project>",
		Short: "Serve the transcripts and memory of <project> as an MCP server over stdio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := args[0]
			cfg, err := config.Load(v, project, g.configFile)
			if err != nil {
				return err
			}
			preprompts, err := prompt.Load(filepath.Join(project, "preprompts"))
			if err != nil {
				return err
			}
			dbs, closeDBs, err := openDBs(cmd.Context(), store.NewLayout(project), cfg, preprompts)
			if err != nil {
				return err
			}
			defer closeDBs()

			svr := mcp.NewServer(mcp.ServerOptions{
				ServerName:    "gencoder",
				ServerVersion: version.Version,
				Verbose:       g.verbose,
				DBs:           dbs,
			})
			return svr.ServeStdio()
		},
	}
	cmd.Flags().String("storage", config.BackendFile, "backend of memory and logs: file or sqlite")
	bind(v, cmd, map[string]string{"storage": "storage.backend"})
	return cmd
}
