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

package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/gencoder/internal/store"
)

const reply = "Here is the program.\n\n" +
	"main.py\n```python\nfrom greet import hello\n\nhello()\n```\n\n" +
	"**greet.py**\n```python\ndef hello():\n    print(\"hello\")\n```\n\n" +
	"[requirements.txt]:\n```\nflask\n```\n"

func TestParseChat(t *testing.T) {
	files := ParseChat(reply)
	require.Len(t, files, 4)
	assert.Equal(t, File{Name: "main.py", Content: "from greet import hello\n\nhello()\n"}, files[0])
	assert.Equal(t, "greet.py", files[1].Name)
	assert.Equal(t, File{Name: "requirements.txt", Content: "flask\n"}, files[2])
	assert.Equal(t, Readme, files[3].Name)
	assert.Equal(t, "Here is the program.\n\nmain.py\n", files[3].Content)
}

func TestParseChat_NoSegments(t *testing.T) {
	assert.Empty(t, ParseChat("I cannot help with that."))
	assert.Empty(t, ParseChat(""))
}

func TestCleanName(t *testing.T) {
	for in, want := range map[string]string{
		"[main.py]":           "main.py",
		"`src/a.go`":          "src/a.go",
		"main.py:":            "main.py",
		"**app.js**":          "app.js",
		"[requirements.txt]:": "requirements.txt",
		"index.html]":         "index.html",
	} {
		assert.Equal(t, want, cleanName(in), in)
	}
}

func TestToFiles_Idempotent(t *testing.T) {
	ws := store.NewMemDB(nil)
	_, err := ToFiles(reply, ws)
	require.NoError(t, err)
	first, err := ws.Keys()
	require.NoError(t, err)
	snapshot := map[string]string{}
	for _, k := range first {
		snapshot[k], _ = ws.Get(k)
	}

	_, err = ToFiles(reply, ws)
	require.NoError(t, err)
	second, err := ws.Keys()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	for _, k := range second {
		v, _ := ws.Get(k)
		assert.Equal(t, snapshot[k], v, k)
	}
	assert.Contains(t, second, AllOutput)
}

func TestToFiles_Zero(t *testing.T) {
	ws := store.NewMemDB(nil)
	files, err := ToFiles("no code here", ws)
	require.NoError(t, err)
	assert.Empty(t, files)
	keys, _ := ws.Keys()
	assert.Equal(t, []string{AllOutput}, keys)
}

func TestCodeBlocks(t *testing.T) {
	blocks := CodeBlocks("run:\n```bash\npip install -r requirements.txt\n```\nthen\n```sh\npython main.py\n```\n")
	assert.Equal(t, []string{"pip install -r requirements.txt\n", "python main.py\n"}, blocks)
}
