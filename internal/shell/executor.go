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

// Package shell runs generated entrypoint scripts.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/internal/utils"
)

// Result describes how a command ended. A non-zero exit is not an error.
type Result struct {
	ExitCode    int
	Interrupted bool
}

type Executor interface {
	Run(ctx context.Context, dir, command string) (Result, error)
}

// Bash runs commands with `bash -c` and stops the child on the first
// interrupt the process receives.
type Bash struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ Executor = Bash{}

func (b Bash) Run(ctx context.Context, dir, command string) (Result, error) {
	cmd := exec.Command("bash", "-c", command)
	cmd.Dir = dir
	cmd.Stdin = b.Stdin
	cmd.Stdout = orDefault(b.Stdout, os.Stdout)
	cmd.Stderr = orDefault(b.Stderr, os.Stderr)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	if err := cmd.Start(); err != nil {
		return Result{}, utils.WrapErrorf(err, "start %q", command)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Warn("%q exited with code %d", command, exitErr.ExitCode())
			return Result{ExitCode: exitErr.ExitCode()}, nil
		}
		return Result{}, err
	case <-sigs:
		log.Info("interrupt received, stopping %q", command)
		_ = cmd.Process.Kill()
		<-done
		return Result{Interrupted: true}, nil
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return Result{Interrupted: true}, ctx.Err()
	}
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
