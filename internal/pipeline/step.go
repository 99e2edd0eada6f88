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

	"github.com/cloudwego/gencoder/llm"
)

// Step is one named unit of work. Its name is the key its conversation is
// logged under, so it must be unique within a pipeline. A step that has no
// exchange with the model returns an empty conversation.
type Step interface {
	Name() string
	Run(ctx context.Context, st *PipelineState) (llm.Conversation, error)
}

// Names returns the names of steps, in order.
func Names(steps []Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Name())
	}
	return out
}
