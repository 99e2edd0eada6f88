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

package store

import (
	"errors"
	"path/filepath"
)

// DBs is the bundle of namespaces handed to every step.
type DBs struct {
	// Input holds user parameters such as "prompt" and "feedback".
	Input DB
	// Preprompts holds the prompt templates.
	Preprompts DB
	// Memory carries values from one step to a later one.
	Memory DB
	// Logs maps a step name to its serialized conversation.
	Logs DB
	// Workspace holds the generated files.
	Workspace DB
}

// Layout names the on-disk locations of a project.
type Layout struct {
	Project   string
	Workspace string
	Memory    string
	Logs      string
}

// NewLayout places workspace/ and memory/ (with memory/logs/) under project.
func NewLayout(project string) Layout {
	memory := filepath.Join(project, "memory")
	return Layout{
		Project:   project,
		Workspace: filepath.Join(project, "workspace"),
		Memory:    memory,
		Logs:      filepath.Join(memory, "logs"),
	}
}

// OpenDiskDBs opens every namespace of l on disk. Input is the project dir
// itself and, like preprompts, is read-only.
func OpenDiskDBs(l Layout, preprompts map[string]string) (*DBs, error) {
	input, err := NewDiskDB(l.Project)
	if err != nil {
		return nil, err
	}
	ws, err := NewDiskDB(l.Workspace)
	if err != nil {
		return nil, err
	}
	mem, err := NewDiskDB(l.Memory)
	if err != nil {
		return nil, err
	}
	logs, err := NewDiskDB(l.Logs)
	if err != nil {
		return nil, err
	}
	return &DBs{
		Input:      ReadOnly(input),
		Preprompts: ReadOnly(NewMemDB(preprompts)),
		Memory:     mem,
		Logs:       logs,
		Workspace:  ws,
	}, nil
}

// NewMemDBs returns a bundle backed entirely by memory, for tests and dry runs.
func NewMemDBs(input, preprompts map[string]string) *DBs {
	return &DBs{
		Input:      ReadOnly(NewMemDB(input)),
		Preprompts: ReadOnly(NewMemDB(preprompts)),
		Memory:     NewMemDB(nil),
		Logs:       NewMemDB(nil),
		Workspace:  NewMemDB(nil),
	}
}

// ErrNoPrompt means the project has neither a prompt nor a main_prompt file.
var ErrNoPrompt = errors.New("store: no prompt; please put your prompt in the file `prompt` in the project directory")

// Prompt returns input["prompt"], falling back to the legacy
// input["main_prompt"] (reported through legacy).
func Prompt(input DB) (prompt string, legacy bool, err error) {
	if input.Has("prompt") {
		p, err := input.Get("prompt")
		return p, false, err
	}
	if input.Has("main_prompt") {
		p, err := input.Get("main_prompt")
		return p, true, err
	}
	return "", false, ErrNoPrompt
}
