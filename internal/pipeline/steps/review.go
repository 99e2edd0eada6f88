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

	"github.com/cloudwego/gencoder/internal/learning"
	"github.com/cloudwego/gencoder/internal/pipeline"
	"github.com/cloudwego/gencoder/internal/utils"
	"github.com/cloudwego/gencoder/llm"
)

// HumanReview records how the human rates the generated code.
type HumanReview struct{}

func (HumanReview) Name() string { return NameHumanReview }

func (HumanReview) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	review, err := learning.HumanInput(st.Console)
	if err != nil {
		return nil, utils.WrapError(err, "collect review")
	}
	data, err := review.JSON()
	if err != nil {
		return nil, err
	}
	if err := st.DBs.Memory.Set(learning.ReviewKey, data); err != nil {
		return nil, err
	}
	return llm.Conversation{}, nil
}
