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

package console

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_ReadLine(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("first\r\nlast"), &out)

	line, err := term.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = term.ReadLine("")
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = term.ReadLine("")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> ", out.String())
}

func TestAsk_RepromptsUntilValid(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("x\nmaybe\ny\n"), &out)

	answer, err := Ask(term, "ran? ", "again: ", "y", "n", "u")
	require.NoError(t, err)
	assert.Equal(t, "y", answer)
	assert.Equal(t, "ran? again: again: ", out.String())
}

func TestAsk_EOF(t *testing.T) {
	term := NewTerminal(strings.NewReader("x\n"), io.Discard)
	_, err := Ask(term, "", "", "y")
	assert.ErrorIs(t, err, io.EOF)
}
