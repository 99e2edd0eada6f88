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

// Package console is the human side of a run: it shows text and reads
// answers line by line.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Console interface {
	Println(a ...any)
	Printf(format string, a ...any)
	// ReadLine shows prompt and returns the next line without its line
	// ending. It returns io.EOF once input is exhausted.
	ReadLine(prompt string) (string, error)
}

var (
	green      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	lightGreen = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	red        = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	yellow     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func Green(s string) string      { return green.Render(s) }
func LightGreen(s string) string { return lightGreen.Render(s) }
func Red(s string) string        { return red.Render(s) }
func Yellow(s string) string     { return yellow.Render(s) }

// Terminal is a Console over a reader and a writer, usually stdin/stdout.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

var _ Console = (*Terminal)(nil)

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Println(a ...any) { fmt.Fprintln(t.out, a...) }

func (t *Terminal) Printf(format string, a ...any) { fmt.Fprintf(t.out, format, a...) }

func (t *Terminal) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(t.out, prompt)
	}
	line, err := t.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ask reads lines until one of choices is given, showing retry before every
// further attempt.
func Ask(c Console, prompt, retry string, choices ...string) (string, error) {
	answer, err := c.ReadLine(prompt)
	for err == nil && !contains(choices, answer) {
		answer, err = c.ReadLine(retry)
	}
	return answer, err
}

func contains(choices []string, s string) bool {
	for _, c := range choices {
		if c == s {
			return true
		}
	}
	return false
}
