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

// Package chat turns assistant replies into workspace files.
package chat

import (
	"errors"
	"regexp"
	"strings"

	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/internal/store"
)

// AllOutput is the workspace key holding the raw reply of the last
// materialized message.
const AllOutput = "all_output.txt"

// Readme receives the text before the first code block.
const Readme = "README.md"

var (
	fileBlock  = regexp.MustCompile("(?s)(\\S+)\\n\\s*```[^\\n]*\\n(.+?)```")
	codeBlock  = regexp.MustCompile("(?s)```\\S*\\n(.+?)```")
	badChars   = regexp.MustCompile(`[<>"|?*]`)
	brackets   = regexp.MustCompile(`^\[(.*)\]$`)
	backticks  = regexp.MustCompile("^`(.*)`$")
	colon      = regexp.MustCompile(`:+$`)
	bracketEnd = regexp.MustCompile(`\]$`)
)

type File struct {
	Name    string
	Content string
}

// ParseChat returns every "filename + fenced block" segment of text, plus a
// README with the leading prose when at least one file was found.
func ParseChat(text string) []File {
	var files []File
	for _, m := range fileBlock.FindAllStringSubmatch(text, -1) {
		name := cleanName(m[1])
		if name == "" {
			continue
		}
		files = append(files, File{Name: name, Content: m[2]})
	}
	if len(files) == 0 {
		return nil
	}
	if readme := strings.Split(text, "```")[0]; strings.TrimSpace(readme) != "" {
		files = append(files, File{Name: Readme, Content: readme})
	}
	return files
}

func cleanName(s string) string {
	s = badChars.ReplaceAllString(s, "")
	s = colon.ReplaceAllString(s, "")
	s = brackets.ReplaceAllString(s, "$1")
	s = backticks.ReplaceAllString(s, "$1")
	s = bracketEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CodeBlocks returns the bodies of every fenced block in text, in order.
func CodeBlocks(text string) []string {
	var out []string
	for _, m := range codeBlock.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// ToFiles stores text under AllOutput and every parsed file under its name.
// Names the workspace rejects are skipped. Later files win over earlier
// ones with the same name.
func ToFiles(text string, ws store.DB) ([]File, error) {
	if err := ws.Set(AllOutput, text); err != nil {
		return nil, err
	}
	files := ParseChat(text)
	written := files[:0]
	for _, f := range files {
		err := ws.Set(f.Name, f.Content)
		if errors.Is(err, store.ErrInvalidKey) {
			log.Warn("skip file with invalid name %q", f.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		written = append(written, f)
	}
	log.Debug("materialized %d files", len(written))
	return written, nil
}
