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

package prompt

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

//go:embed preprompts
var preprompts embed.FS

// Keys of the preprompts every workflow may read.
const (
	Generate    = "generate"
	Philosophy  = "philosophy"
	QA          = "qa"
	Spec        = "spec"
	Respec      = "respec"
	UnitTests   = "unit_tests"
	UseQA       = "use_qa"
	FixCode     = "fix_code"
	UseFeedback = "use_feedback"
)

// Defaults returns the preprompts shipped with the binary.
func Defaults() map[string]string {
	out := make(map[string]string)
	entries, err := fs.ReadDir(preprompts, "preprompts")
	if err != nil {
		panic(err)
	}
	for _, e := range entries {
		bs, err := preprompts.ReadFile("preprompts/" + e.Name())
		if err != nil {
			panic(err)
		}
		out[e.Name()] = string(bs)
	}
	return out
}

// Load returns the defaults overridden by every regular file in dir.
// A missing dir yields the defaults.
func Load(dir string) (map[string]string, error) {
	out := Defaults()
	if dir == "" {
		return out, nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		bs, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out[e.Name()] = string(bs)
	}
	return out, nil
}

// Names returns the sorted keys of m.
func Names(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NothingToClarify is what the model answers once the task is clear.
const NothingToClarify = "Nothing more to clarify."

const ClarifyAnswerSuffix = "\n\n" +
	"Is anything else unclear? If yes, only answer in the form:\n" +
	"{remaining unclear areas} remaining questions.\n" +
	"{Next question}\n" +
	"If everything is sufficiently clear, only answer \"" + NothingToClarify + "\"."

const MakeAssumptions = "Make your own assumptions and state them explicitly before starting"

const RewriteSpec = "Based on the conversation so far, please reiterate the specification for the program. " +
	"If there are things that can be improved, please incorporate the improvements. " +
	"If you are satisfied with the specification, just write out the specification word by word again."

const FixErrors = "Please fix any errors in the code above."

const Entrypoint = "You will get information about a codebase that is currently on disk in the current folder.\n" +
	"From this you will answer with code blocks that includes all the necessary unix terminal commands to " +
	"a) install dependencies " +
	"b) run all necessary parts of the codebase (in parallel if necessary).\n" +
	"Do not install globally. Do not use sudo.\n" +
	"Do not explain the code, just give the commands.\n" +
	"Do not use placeholders, use example values (like . for a folder argument) if necessary.\n"
