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

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T, db DB) {
	t.Helper()

	_, err := db.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, db.Has("missing"))

	require.NoError(t, db.Set("b", "two"))
	require.NoError(t, db.Set("a", "one\nline two"))
	require.NoError(t, db.Set("a", "one\nline three"))

	v, err := db.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "one\nline three", v)
	assert.True(t, db.Has("b"))

	keys, err := db.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	v, err = GetOr(db, "nope", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", v)

	require.NoError(t, db.Clear())
	keys, err = db.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemDB(t *testing.T) {
	testDB(t, NewMemDB(nil))
}

func TestDiskDB(t *testing.T) {
	db, err := NewDiskDB(filepath.Join(t.TempDir(), "ws"))
	require.NoError(t, err)
	testDB(t, db)
}

func TestDiskDB_NestedKeys(t *testing.T) {
	db, err := NewDiskDB(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, db.Set("src/app/main.py", "print(1)"))
	assert.True(t, db.Has("src/app/main.py"))
	assert.False(t, db.Has("src/app"))

	keys, err := db.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app/main.py"}, keys)

	for _, bad := range []string{"", "../escape", "/etc/passwd", ".."} {
		assert.ErrorIs(t, db.Set(bad, "x"), ErrInvalidKey, bad)
	}
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "gencoder.db"))
	require.NoError(t, err)
	defer s.Close()

	testDB(t, s.Namespace("logs"))

	mem, logs := s.Namespace("memory"), s.Namespace("logs")
	require.NoError(t, mem.Set("specification", "spec"))
	assert.False(t, logs.Has("specification"))
}

func TestReadOnly(t *testing.T) {
	db := ReadOnly(NewMemDB(map[string]string{"prompt": "hello"}))
	v, err := db.Get("prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.ErrorIs(t, db.Set("prompt", "x"), ErrReadOnly)
	assert.ErrorIs(t, db.Clear(), ErrReadOnly)
	assert.Equal(t, db, ReadOnly(db))
}

func TestOpenDiskDBs(t *testing.T) {
	project := t.TempDir()
	dbs, err := OpenDiskDBs(NewLayout(project), map[string]string{"qa": "ask"})
	require.NoError(t, err)

	require.NoError(t, dbs.Logs.Set("clarify", "[]"))
	assert.FileExists(t, filepath.Join(project, "memory", "logs", "clarify"))
	assert.Equal(t, filepath.Join(project, "workspace"), dbs.Workspace.Path())
	assert.ErrorIs(t, dbs.Input.Set("prompt", "x"), ErrReadOnly)

	v, err := dbs.Preprompts.Get("qa")
	require.NoError(t, err)
	assert.Equal(t, "ask", v)
}

func TestPrompt(t *testing.T) {
	p, legacy, err := Prompt(NewMemDB(map[string]string{"prompt": "a", "main_prompt": "b"}))
	require.NoError(t, err)
	assert.Equal(t, "a", p)
	assert.False(t, legacy)

	p, legacy, err = Prompt(NewMemDB(map[string]string{"main_prompt": "b"}))
	require.NoError(t, err)
	assert.Equal(t, "b", p)
	assert.True(t, legacy)

	_, _, err = Prompt(NewMemDB(nil))
	assert.ErrorIs(t, err, ErrNoPrompt)
}
