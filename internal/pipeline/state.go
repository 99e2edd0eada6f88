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
	"time"

	"github.com/cloudwego/gencoder/internal/console"
	"github.com/cloudwego/gencoder/internal/shell"
	"github.com/cloudwego/gencoder/internal/store"
	"github.com/cloudwego/gencoder/llm"
)

// PipelineState is everything a step may touch during one run. The stores
// are opened once per run and outlive every step.
type PipelineState struct {
	RunID   string
	Session string
	Config  Config

	AI       llm.Assistant
	DBs      *store.DBs
	Console  console.Console
	Executor shell.Executor

	History []StepRecord
}

// StepRecord is an immutable log entry for one step execution.
type StepRecord struct {
	StepName  string
	Status    StepStatus
	Messages  int
	Hash      string // hex sha256 of the logged conversation
	Error     string
	StartedAt time.Time
	EndedAt   time.Time
}

// StepStatus is the outcome of a step run.
type StepStatus string

const (
	StepOK     StepStatus = "ok"
	StepFailed StepStatus = "failed"
)
