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

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alog "github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/internal/store"
	"github.com/cloudwego/gencoder/llm"
)

func sendAndRecv(t *testing.T, initRequest any, stdinWriter *io.PipeWriter, scanner *bufio.Scanner) map[string]any {
	requestBytes, err := json.Marshal(initRequest)
	if err != nil {
		t.Fatal(err)
	}
	_, err = stdinWriter.Write(append(requestBytes, '\n'))
	if err != nil {
		t.Fatal(err)
	}

	// Read response
	if !scanner.Scan() {
		t.Fatal("failed to read response")
	}
	responseBytes := scanner.Bytes()

	var response map[string]any
	if err := json.Unmarshal(responseBytes, &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return response
}

func TestTranscriptServer(t *testing.T) {
	alog.SetLogLevel(alog.DebugLevel)
	svr := NewServer(ServerOptions{
		ServerName:    "gencoder",
		ServerVersion: "1.0.0",
		DBs:           seededDBs(t),
	})
	defer svr.Close()

	// Create pipes for stdin and stdout
	stdinReader, stdinWriter := io.Pipe()
	stdoutReader, stdoutWriter := io.Pipe()

	// Create server

	stdioServer := server.NewStdioServer(svr.Server)
	stdioServer.SetErrorLogger(log.New(io.Discard, "", 0))

	// Create context with cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create error channel to catch server errors
	serverErrCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		err := stdioServer.Listen(ctx, stdinReader, stdoutWriter)
		if err != nil && err != io.EOF && err != context.Canceled {
			serverErrCh <- err
		}
		stdoutWriter.Close()
		close(serverErrCh)
	}()

	time.Sleep(100 * time.Millisecond)

	// Create test message
	initRequest := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2024-11-05",
			"clientInfo": map[string]any{
				"name":    "test-client",
				"version": "1.0.0",
			},
		},
	}

	scanner := bufio.NewScanner(stdoutReader)
	resp := sendAndRecv(t, initRequest, stdinWriter, scanner)
	t.Logf("resp %#v", resp)
	assert.Contains(t, resp, "result")

	callRequest := map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      ToolGetTranscript,
			"arguments": map[string]any{"step": "simple_gen"},
		},
	}
	resp = sendAndRecv(t, callRequest, stdinWriter, scanner)
	result, ok := resp["result"].(map[string]any)
	require.True(t, ok, "resp %#v", resp)
	content := result["content"].([]any)
	require.Len(t, content, 1)
	text := content[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "print('hello')")

	// Clean up
	cancel()
	stdinWriter.Close()

	// Check for server errors
	if err := <-serverErrCh; err != nil {
		t.Errorf("unexpected server error: %v", err)
	}
}

func seededDBs(t *testing.T) *store.DBs {
	t.Helper()
	dbs := store.NewMemDBs(map[string]string{"prompt": "hello"}, nil)
	raw, err := llm.MarshalConversation(llm.Conversation{
		llm.SystemMessage("sys"),
		llm.UserMessage("hello"),
		llm.AssistantMessage("main.py\n```python\nprint('hello')\n```"),
	})
	require.NoError(t, err)
	require.NoError(t, dbs.Logs.Set("simple_gen", raw))
	require.NoError(t, dbs.Logs.Set("gen_entrypoint", "[]"))
	require.NoError(t, dbs.Memory.Set("review", `{"ran":true}`))
	return dbs
}

func TestTranscripts(t *testing.T) {
	ctx := context.Background()
	tr := NewTranscripts(seededDBs(t))
	defer tr.Close()

	steps, err := tr.ListSteps(ctx, ListStepsReq{})
	require.NoError(t, err)
	assert.Equal(t, []StepInfo{{Name: "gen_entrypoint", Messages: 0}, {Name: "simple_gen", Messages: 3}}, steps.Steps)

	conv, err := tr.GetTranscript(ctx, GetTranscriptReq{Step: "simple_gen"})
	require.NoError(t, err)
	assert.Equal(t, llm.RoleAssistant, conv.Messages[2].Role)

	_, err = tr.GetTranscript(ctx, GetTranscriptReq{Step: "nope"})
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = tr.GetTranscript(ctx, GetTranscriptReq{})
	assert.Error(t, err)

	mem, err := tr.GetMemory(ctx, GetMemoryReq{Key: "review"})
	require.NoError(t, err)
	assert.Equal(t, `{"ran":true}`, mem.Value)
}

func TestTranscripts_ReloadOnWrite(t *testing.T) {
	ctx := context.Background()
	logs, err := store.NewDiskDB(t.TempDir())
	require.NoError(t, err)
	dbs := &store.DBs{Logs: logs, Memory: store.NewMemDB(nil)}
	write := func(content string) {
		raw, err := llm.MarshalConversation(llm.Conversation{llm.AssistantMessage(content)})
		require.NoError(t, err)
		require.NoError(t, logs.Set("clarify", raw))
	}
	write("first")

	tr := NewTranscripts(dbs)
	defer tr.Close()
	got, err := tr.GetTranscript(ctx, GetTranscriptReq{Step: "clarify"})
	require.NoError(t, err)
	assert.Equal(t, "first", got.Messages[0].Content)

	write("second")
	assert.Eventually(t, func() bool {
		got, err := tr.GetTranscript(ctx, GetTranscriptReq{Step: "clarify"})
		return err == nil && got.Messages[0].Content == "second"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestTranscripts_UnwatchedLogsAreNotCached(t *testing.T) {
	ctx := context.Background()
	dbs := seededDBs(t)
	require.Empty(t, dbs.Logs.Path())
	tr := NewTranscripts(dbs)
	defer tr.Close()

	got, err := tr.GetTranscript(ctx, GetTranscriptReq{Step: "simple_gen"})
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)

	raw, err := llm.MarshalConversation(llm.Conversation{llm.AssistantMessage("rewritten")})
	require.NoError(t, err)
	require.NoError(t, dbs.Logs.Set("simple_gen", raw))

	got, err = tr.GetTranscript(ctx, GetTranscriptReq{Step: "simple_gen"})
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "rewritten", got.Messages[0].Content)
}

func TestSchemas(t *testing.T) {
	var s map[string]any
	require.NoError(t, json.Unmarshal(SchemaGetTranscript, &s))
	props, ok := s["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "step")
}
