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

package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/cloudwego/gencoder/internal/store"
	"github.com/cloudwego/gencoder/internal/utils"
	"github.com/cloudwego/gencoder/llm"
)

const (
	ToolListSteps     = "list_steps"
	ToolGetTranscript = "get_transcript"
	ToolGetMemory     = "get_memory"

	DescListSteps     = "list every step that has a logged conversation, with its message count"
	DescGetTranscript = "get the conversation a step exchanged with the model, in order"
	DescGetMemory     = "get a value a step left in memory, such as specification, unit_tests, review or learning"
)

var (
	SchemaListSteps     = utils.GetJSONSchema(ListStepsReq{})
	SchemaGetTranscript = utils.GetJSONSchema(GetTranscriptReq{})
	SchemaGetMemory     = utils.GetJSONSchema(GetMemoryReq{})
)

type ListStepsReq struct{}

type ListStepsResp struct {
	Steps []StepInfo `json:"steps" jsonschema:"description=the logged steps, sorted by name"`
}

type StepInfo struct {
	Name     string `json:"name" jsonschema:"description=the name of the step"`
	Messages int    `json:"messages" jsonschema:"description=number of messages in the conversation"`
}

type GetTranscriptReq struct {
	Step string `json:"step" jsonschema:"description=the name of the step, e.g. clarify or gen_code"`
}

type GetTranscriptResp struct {
	Step     string        `json:"step"`
	Messages []llm.Message `json:"messages"`
}

type GetMemoryReq struct {
	Key string `json:"key" jsonschema:"description=the memory key"`
}

type GetMemoryResp struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Transcripts serves the logs and memory of one project. Decoded logs are
// cached until the file behind them changes. Logs without a directory to
// watch are decoded on every read.
type Transcripts struct {
	logs     store.DB
	memory   store.DB
	cache    sync.Map // step name -> llm.Conversation
	watching bool
	stop     func()
}

func NewTranscripts(dbs *store.DBs) *Transcripts {
	t := &Transcripts{logs: dbs.Logs, memory: dbs.Memory, stop: func() {}}
	if dir := dbs.Logs.Path(); dir != "" {
		t.watching = true
		t.stop = utils.WatchDir(dir, func(op fsnotify.Op, file string) {
			if op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				t.cache.Delete(filepath.Base(file))
			}
		})
	}
	return t
}

// Close stops watching the logs directory.
func (t *Transcripts) Close() { t.stop() }

func (t *Transcripts) transcript(step string) (llm.Conversation, error) {
	if v, ok := t.cache.Load(step); ok {
		return v.(llm.Conversation), nil
	}
	raw, err := t.logs.Get(step)
	if err != nil {
		return nil, err
	}
	conv, err := llm.UnmarshalConversation(raw)
	if err != nil {
		return nil, fmt.Errorf("decode log of %s: %w", step, err)
	}
	if t.watching {
		t.cache.Store(step, conv)
	}
	return conv, nil
}

func (t *Transcripts) ListSteps(ctx context.Context, req ListStepsReq) (*ListStepsResp, error) {
	keys, err := t.logs.Keys()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	resp := &ListStepsResp{Steps: make([]StepInfo, 0, len(keys))}
	for _, k := range keys {
		conv, err := t.transcript(k)
		if err != nil {
			return nil, err
		}
		resp.Steps = append(resp.Steps, StepInfo{Name: k, Messages: len(conv)})
	}
	return resp, nil
}

func (t *Transcripts) GetTranscript(ctx context.Context, req GetTranscriptReq) (*GetTranscriptResp, error) {
	if req.Step == "" {
		return nil, fmt.Errorf("step is required")
	}
	conv, err := t.transcript(req.Step)
	if err != nil {
		return nil, err
	}
	return &GetTranscriptResp{Step: req.Step, Messages: conv}, nil
}

func (t *Transcripts) GetMemory(ctx context.Context, req GetMemoryReq) (*GetMemoryResp, error) {
	v, err := t.memory.Get(req.Key)
	if err != nil {
		return nil, err
	}
	return &GetMemoryResp{Key: req.Key, Value: v}, nil
}
