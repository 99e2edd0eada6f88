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
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudwego/gencoder/internal/config"
	"github.com/cloudwego/gencoder/internal/console"
	"github.com/cloudwego/gencoder/internal/learning"
	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/internal/pipeline"
	"github.com/cloudwego/gencoder/internal/pipeline/steps"
	"github.com/cloudwego/gencoder/internal/store"
	"github.com/cloudwego/gencoder/internal/utils"
	"github.com/cloudwego/gencoder/llm"
	"github.com/cloudwego/gencoder/llm/prompt"
)

func newRunCmd(g *globalOptions, env Env) *cobra.Command {
	v := config.New()
	cmd := &cobra.Command{
		Use:   "run <project>",
		Short: "Run a steps config on the prompt in <project>",
		Long: "Run reads <project>/prompt, runs the chosen steps config and writes the generated files to\n" +
			"<project>/workspace and the conversations to <project>/memory/logs.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, args[0], g.configFile)
			if err != nil {
				return err
			}
			if !g.verbose {
				log.SetLogLevel(log.ParseLevel(cfg.Log.Level))
			}
			return Run(cmd.Context(), args[0], cfg, env)
		},
	}

	f := cmd.Flags()
	f.StringP("steps", "s", string(pipeline.ConfigDefault), "steps config to run")
	f.StringP("model", "m", "", "model name, e.g. gpt-4")
	f.String("model-type", "", "model provider: openai, claude, ark, ollama, dashscope, deepseek")
	f.Float32P("temperature", "t", 0.1, "sampling temperature")
	f.Bool("delete-existing", false, "clear logs, memory and workspace before the run")
	f.String("storage", config.BackendFile, "backend of memory and logs: file or sqlite")
	f.String("session", "", "session id recorded with learnings (default: random)")
	f.Bool("collect-learnings", true, "store a learning record in memory after the run")
	bind(v, cmd, map[string]string{
		"steps":             "steps",
		"model":             "model.name",
		"model-type":        "model.type",
		"temperature":       "model.temperature",
		"delete-existing":   "delete_existing",
		"storage":           "storage.backend",
		"session":           "session",
		"collect-learnings": "collect_learnings",
	})
	return cmd
}

func bind(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// Run executes one pipeline on project with cfg.
func Run(ctx context.Context, project string, cfg *config.Config, env Env) error {
	stepsCfg := cfg.StepsConfig()

	preprompts, err := prompt.Load(filepath.Join(project, "preprompts"))
	if err != nil {
		return utils.WrapError(err, "load preprompts")
	}
	dbs, closeDBs, err := openDBs(ctx, store.NewLayout(project), cfg, preprompts)
	if err != nil {
		return err
	}
	defer closeDBs()

	if cfg.DeleteExisting {
		if stepsCfg.ReusesWorkspace() {
			log.Warn("steps config %s works on the previous run, keeping memory and workspace", stepsCfg)
		} else if err := clearRun(dbs); err != nil {
			return err
		}
	}

	session := cfg.Session
	if session == "" {
		session = uuid.NewString()
	}

	cm, err := env.NewModel(ctx, cfg.Model)
	if err != nil {
		return err
	}
	ai := llm.NewAI(cm, llm.AIOptions{
		ModelName:   cfg.Model.ModelName,
		Temperature: cfg.Model.Temperature,
		Echo:        env.Out,
	})

	done, err := clarifyPredicate(cfg.Clarify)
	if err != nil {
		return err
	}
	pl, err := steps.New(stepsCfg, steps.Options{ClarifyDone: done})
	if err != nil {
		return err
	}

	st := &pipeline.PipelineState{
		RunID:    uuid.NewString(),
		Session:  session,
		Config:   stepsCfg,
		AI:       ai,
		DBs:      dbs,
		Console:  console.NewTerminal(env.In, env.Out),
		Executor: env.Executor,
	}
	log.Info("run %s: steps %s, model %s", st.RunID, stepsCfg, cfg.Model.ModelName)
	if err := pl.Run(ctx, st); err != nil {
		return err
	}

	if !cfg.CollectLearnings {
		return nil
	}
	l, err := learning.Extract(learning.RunInfo{
		Model:       cfg.Model.ModelName,
		Temperature: ai.Temperature(),
		Steps:       pipeline.Names(pl.Steps),
		StepsHash:   pipeline.Fingerprint(pl.Steps),
		Session:     session,
	}, dbs)
	if err != nil {
		return utils.WrapError(err, "extract learning")
	}
	return learning.Save(l, dbs.Memory)
}

func clearRun(dbs *store.DBs) error {
	for _, ns := range []struct {
		name string
		db   store.DB
	}{{"logs", dbs.Logs}, {"memory", dbs.Memory}, {"workspace", dbs.Workspace}} {
		if err := ns.db.Clear(); err != nil {
			return utils.WrapErrorf(err, "clear %s", ns.name)
		}
	}
	return nil
}

func clarifyPredicate(c config.ClarifyConfig) (steps.TerminationPredicate, error) {
	if c.Expression != "" {
		return steps.ExpressionPredicate(c.Expression, c.Sentinel)
	}
	return steps.DefaultTermination(c.Sentinel, c.NegativePrefix), nil
}

// openDBs opens the stores of l. With the sqlite backend, memory and logs
// live in one database file; input and workspace stay on disk.
func openDBs(ctx context.Context, l store.Layout, cfg *config.Config, preprompts map[string]string) (*store.DBs, func(), error) {
	dbs, err := store.OpenDiskDBs(l, preprompts)
	if err != nil {
		return nil, nil, utils.WrapErrorf(err, "open project %s", l.Project)
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		return dbs, func() {}, nil
	}
	dsn := cfg.Storage.DSN
	if !filepath.IsAbs(dsn) {
		dsn = filepath.Join(l.Memory, dsn)
	}
	sq, err := store.OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	dbs.Memory = sq.Namespace("memory")
	dbs.Logs = sq.Namespace("logs")
	return dbs, func() {
		if err := sq.Close(); err != nil {
			log.Error("close sqlite: %v", err)
		}
	}, nil
}
