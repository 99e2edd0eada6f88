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
	"fmt"
	"strings"
)

// Config names a workflow: a fixed, ordered list of steps.
type Config string

const (
	ConfigDefault     Config = "default"
	ConfigBenchmark   Config = "benchmark"
	ConfigSimple      Config = "simple"
	ConfigTDD         Config = "tdd"
	ConfigTDDPlus     Config = "tdd+"
	ConfigClarify     Config = "clarify"
	ConfigRespec      Config = "respec"
	ConfigExecuteOnly Config = "execute_only"
	ConfigEvaluate    Config = "evaluate"
	ConfigUseFeedback Config = "use_feedback"
)

var configs = []Config{
	ConfigDefault,
	ConfigBenchmark,
	ConfigSimple,
	ConfigTDD,
	ConfigTDDPlus,
	ConfigClarify,
	ConfigRespec,
	ConfigExecuteOnly,
	ConfigEvaluate,
	ConfigUseFeedback,
}

// Configs lists every known workflow.
func Configs() []Config {
	return append([]Config(nil), configs...)
}

func ParseConfig(s string) (Config, error) {
	c := Config(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return ConfigDefault, nil
	}
	for _, known := range configs {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown steps config %q", s)
}

// ReusesWorkspace reports whether the workflow works on the output of an
// earlier run, in which case memory and workspace must not be cleared.
func (c Config) ReusesWorkspace() bool {
	switch c {
	case ConfigExecuteOnly, ConfigEvaluate, ConfigUseFeedback:
		return true
	}
	return false
}
