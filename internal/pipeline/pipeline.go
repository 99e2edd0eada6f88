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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/llm"
)

// ErrDuplicateStep means a pipeline lists the same step name twice, which
// would overwrite its log within one run.
var ErrDuplicateStep = errors.New("pipeline: duplicate step")

// Pipeline runs steps in sequence. After each step its conversation is
// written to the logs store under the step name; the first failing step
// stops the run.
type Pipeline struct {
	Steps []Step
}

func (p *Pipeline) Run(ctx context.Context, st *PipelineState) error {
	if st == nil || st.DBs == nil || st.DBs.Logs == nil {
		return errors.New("pipeline: state has no logs store")
	}
	seen := make(map[string]bool, len(p.Steps))
	for i, step := range p.Steps {
		if step == nil {
			return fmt.Errorf("pipeline: step %d is nil", i)
		}
		if seen[step.Name()] {
			return fmt.Errorf("%w: %s", ErrDuplicateStep, step.Name())
		}
		seen[step.Name()] = true
	}

	for _, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.runStep(ctx, step, st); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) runStep(ctx context.Context, step Step, st *PipelineState) error {
	name := step.Name()
	log.Info("running step %s", name)
	rec := StepRecord{StepName: name, StartedAt: time.Now()}

	conv, err := step.Run(ctx, st)
	if err == nil {
		err = p.persist(st, name, conv, &rec)
	}
	rec.EndedAt = time.Now()
	if err != nil {
		rec.Status = StepFailed
		rec.Error = err.Error()
		st.History = append(st.History, rec)
		log.Error("step %s failed: %v", name, err)
		return fmt.Errorf("step %s: %w", name, err)
	}
	rec.Status = StepOK
	st.History = append(st.History, rec)
	log.Debug("step %s done: %d messages, hash %s", name, rec.Messages, rec.Hash)
	return nil
}

func (p *Pipeline) persist(st *PipelineState, name string, conv llm.Conversation, rec *StepRecord) error {
	data, err := llm.MarshalConversation(conv)
	if err != nil {
		return fmt.Errorf("serialize conversation: %w", err)
	}
	if err := st.DBs.Logs.Set(name, data); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	rec.Messages = len(conv)
	rec.Hash = Hash([]byte(data))
	return nil
}
