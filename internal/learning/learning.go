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

// Package learning records what happened in a run, and what the human
// thought of it, so that runs can be compared later.
package learning

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/gencoder/internal/chat"
	"github.com/cloudwego/gencoder/internal/store"
	"github.com/cloudwego/gencoder/llm"
)

const Version = "0.3"

// Memory keys owned by this package.
const (
	ReviewKey   = "review"
	LearningKey = "learning"
)

type Learning struct {
	Model         string  `json:"model"`
	Temperature   float32 `json:"temperature"`
	Steps         string  `json:"steps"`
	StepsFileHash string  `json:"steps_file_hash"`
	Prompt        string  `json:"prompt"`
	Logs          string  `json:"logs"`
	Workspace     string  `json:"workspace"`
	Feedback      *string `json:"feedback"`
	Session       string  `json:"session"`
	Review        *Review `json:"review"`
	Timestamp     string  `json:"timestamp"`
	Version       string  `json:"version"`
}

// RunInfo describes the run a Learning is extracted from.
type RunInfo struct {
	Model       string
	Temperature float32
	Steps       []string
	StepsHash   string
	Session     string
}

// Extract builds the Learning of a finished run from its stores.
func Extract(info RunInfo, dbs *store.DBs) (*Learning, error) {
	prompt, _, err := store.Prompt(dbs.Input)
	if err != nil {
		return nil, err
	}
	var review *Review
	if dbs.Memory.Has(ReviewKey) {
		raw, err := dbs.Memory.Get(ReviewKey)
		if err != nil {
			return nil, err
		}
		if review, err = ParseReview(raw); err != nil {
			return nil, fmt.Errorf("parse review: %w", err)
		}
	}
	var feedback *string
	if dbs.Input.Has("feedback") {
		fb, err := dbs.Input.Get("feedback")
		if err != nil {
			return nil, err
		}
		feedback = &fb
	}
	logs, err := LogsToString(info.Steps, dbs.Logs)
	if err != nil {
		return nil, err
	}
	ws, err := store.GetOr(dbs.Workspace, chat.AllOutput, "")
	if err != nil {
		return nil, err
	}
	steps, err := json.Marshal(info.Steps)
	if err != nil {
		return nil, err
	}
	return &Learning{
		Model:         info.Model,
		Temperature:   info.Temperature,
		Steps:         string(steps),
		StepsFileHash: info.StepsHash,
		Prompt:        prompt,
		Logs:          logs,
		Workspace:     ws,
		Feedback:      feedback,
		Session:       info.Session,
		Review:        review,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Version:       Version,
	}, nil
}

// Save stores l as JSON under LearningKey.
func Save(l *Learning, memory store.DB) error {
	bs, err := json.Marshal(l)
	if err != nil {
		return err
	}
	return memory.Set(LearningKey, string(bs))
}

// LogsToString renders the logged conversation of each step under a
// "--- name ---" header.
func LogsToString(steps []string, logs store.DB) (string, error) {
	chunks := make([]string, 0, 2*len(steps))
	for _, name := range steps {
		chunks = append(chunks, fmt.Sprintf("--- %s ---\n", name))
		raw, err := logs.Get(name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", fmt.Errorf("no log for step %s: %w", name, err)
			}
			return "", err
		}
		conv, err := llm.UnmarshalConversation(raw)
		if err != nil {
			return "", fmt.Errorf("log of step %s: %w", name, err)
		}
		chunks = append(chunks, FormatMessages(conv))
	}
	return strings.Join(chunks, "\n"), nil
}

func FormatMessages(conv llm.Conversation) string {
	parts := make([]string, 0, len(conv))
	for _, m := range conv {
		parts = append(parts, fmt.Sprintf("%s:\n\n%s", m.Role, m.Content))
	}
	return strings.Join(parts, "\n")
}
