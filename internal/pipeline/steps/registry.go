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
	"fmt"

	"github.com/cloudwego/gencoder/internal/pipeline"
)

// Options tunes the steps a registry builds.
type Options struct {
	// ClarifyDone overrides the clarify termination predicate.
	ClarifyDone TerminationPredicate
}

type factory func(Options) pipeline.Step

func fixed(s pipeline.Step) factory { return func(Options) pipeline.Step { return s } }

var (
	simpleGen         = fixed(SimpleGen{})
	genSpec           = fixed(GenSpec{})
	respec            = fixed(Respec{})
	genUnitTests      = fixed(GenUnitTests{})
	genClarifiedCode  = fixed(GenClarifiedCode{})
	genCode           = fixed(GenCode{})
	fixCode           = fixed(FixCode{})
	genEntrypoint     = fixed(GenEntrypoint{})
	executeEntrypoint = fixed(ExecuteEntrypoint{})
	humanReview       = fixed(HumanReview{})
	useFeedback       = fixed(UseFeedback{})

	clarify factory = func(o Options) pipeline.Step { return Clarify{Done: o.ClarifyDone} }
)

var registry = map[pipeline.Config][]factory{}

func register(c pipeline.Config, fs ...factory) { registry[c] = fs }

func init() {
	register(pipeline.ConfigDefault, clarify, genClarifiedCode, genEntrypoint, executeEntrypoint, humanReview)
	register(pipeline.ConfigBenchmark, simpleGen, genEntrypoint)
	register(pipeline.ConfigSimple, simpleGen, genEntrypoint, executeEntrypoint)
	register(pipeline.ConfigTDD, genSpec, genUnitTests, genCode, genEntrypoint, executeEntrypoint, humanReview)
	register(pipeline.ConfigTDDPlus, genSpec, genUnitTests, genCode, fixCode, genEntrypoint, executeEntrypoint, humanReview)
	register(pipeline.ConfigClarify, clarify, genClarifiedCode, genEntrypoint, executeEntrypoint, humanReview)
	register(pipeline.ConfigRespec, genSpec, respec, genUnitTests, genCode, fixCode, genEntrypoint, executeEntrypoint, humanReview)
	register(pipeline.ConfigUseFeedback, useFeedback, genEntrypoint, executeEntrypoint, humanReview)
	register(pipeline.ConfigExecuteOnly, executeEntrypoint)
	register(pipeline.ConfigEvaluate, executeEntrypoint, humanReview)
}

// ForConfig returns a fresh, ordered step list for c.
func ForConfig(c pipeline.Config, opts Options) ([]pipeline.Step, error) {
	fs, ok := registry[c]
	if !ok {
		return nil, fmt.Errorf("no steps registered for config %q", c)
	}
	out := make([]pipeline.Step, 0, len(fs))
	for _, f := range fs {
		out = append(out, f(opts))
	}
	return out, nil
}

// New returns the pipeline for c.
func New(c pipeline.Config, opts Options) (*pipeline.Pipeline, error) {
	s, err := ForConfig(c, opts)
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{Steps: s}, nil
}
