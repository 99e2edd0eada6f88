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
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/internal/pipeline"
	"github.com/cloudwego/gencoder/internal/utils"
	"github.com/cloudwego/gencoder/llm"
	"github.com/cloudwego/gencoder/llm/prompt"
)

// ContinueSentinel is what the human types to stop answering questions.
const ContinueSentinel = "c"

// TerminationPredicate reports whether an assistant reply ends the
// clarification.
type TerminationPredicate func(reply string) bool

// DefaultTermination stops when the trimmed reply equals sentinel, or when
// its lower-cased form starts with negative. Empty values disable the
// corresponding check.
func DefaultTermination(sentinel, negative string) TerminationPredicate {
	negative = strings.ToLower(negative)
	return func(reply string) bool {
		r := strings.TrimSpace(reply)
		if sentinel != "" && r == sentinel {
			return true
		}
		return negative != "" && strings.HasPrefix(strings.ToLower(r), negative)
	}
}

// ExpressionPredicate compiles a boolean govaluate expression. The
// expression sees `reply` (trimmed), `lower` (trimmed, lower-cased) and
// `sentinel`, and may call has_prefix, has_suffix and contains.
//
//	reply == sentinel || has_prefix(lower, "no")
func ExpressionPredicate(expr, sentinel string) (TerminationPredicate, error) {
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, expressionFuncs)
	if err != nil {
		return nil, utils.WrapErrorf(err, "parse clarify expression %q", expr)
	}
	return func(reply string) bool {
		r := strings.TrimSpace(reply)
		v, err := e.Evaluate(map[string]interface{}{
			"reply":    r,
			"lower":    strings.ToLower(r),
			"sentinel": sentinel,
		})
		if err != nil {
			log.Warn("evaluate clarify expression: %v", err)
			return false
		}
		b, ok := v.(bool)
		if !ok {
			log.Warn("clarify expression returned %T, want bool", v)
		}
		return ok && b
	}, nil
}

var expressionFuncs = map[string]govaluate.ExpressionFunction{
	"has_prefix": stringFunc(strings.HasPrefix),
	"has_suffix": stringFunc(strings.HasSuffix),
	"contains":   stringFunc(strings.Contains),
}

func stringFunc(f func(s, arg string) bool) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("want 2 arguments, got %d", len(args))
		}
		s, ok1 := args[0].(string)
		arg, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("want string arguments, got %T and %T", args[0], args[1])
		}
		return f(s, arg), nil
	}
}

// Clarify asks the model which parts of the prompt are unclear and lets the
// human answer until the model or the human ends the exchange.
type Clarify struct {
	// Done ends the exchange on an assistant reply. Nil means
	// DefaultTermination(prompt.NothingToClarify, "no").
	Done TerminationPredicate
}

func (Clarify) Name() string { return NameClarify }

func (c Clarify) Run(ctx context.Context, st *pipeline.PipelineState) (llm.Conversation, error) {
	done := c.Done
	if done == nil {
		done = DefaultTermination(prompt.NothingToClarify, "no")
	}
	qa, err := preprompt(st, prompt.QA)
	if err != nil {
		return nil, err
	}
	input, err := getPrompt(st)
	if err != nil {
		return nil, err
	}
	conv := llm.Conversation{llm.SystemMessage(qa)}
	for {
		if conv, err = st.AI.Next(ctx, conv, input); err != nil {
			return nil, err
		}
		if done(lastContent(conv)) {
			show(st, prompt.NothingToClarify)
			return conv, nil
		}

		show(st)
		answer, err := st.Console.ReadLine("(answer in text, or \"c\" to move on)\n")
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, utils.WrapError(err, "read answer")
		}
		show(st)

		if answer == "" || answer == ContinueSentinel {
			show(st, "(letting the model make its own assumptions)")
			show(st)
			return st.AI.Next(ctx, conv, prompt.MakeAssumptions)
		}
		input = answer + prompt.ClarifyAnswerSuffix
	}
}
