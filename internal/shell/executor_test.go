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

package shell

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBash(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

func TestBash_RunsInDir(t *testing.T) {
	requireBash(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.sh"), []byte("echo hello > out.txt\necho done\n"), 0o644))

	var out bytes.Buffer
	res, err := Bash{Stdout: &out}.Run(context.Background(), dir, "bash run.sh")
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, "done\n", out.String())

	bs, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(bs))
}

func TestBash_NonZeroExitIsNotAnError(t *testing.T) {
	requireBash(t)
	res, err := Bash{}.Run(context.Background(), t.TempDir(), "exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestBash_ContextCancel(t *testing.T) {
	requireBash(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	res, err := Bash{}.Run(ctx, t.TempDir(), "sleep 5")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, res.Interrupted)
}
