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
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cloudwego/gencoder/internal/log"
	"github.com/cloudwego/gencoder/internal/store"
)

type ServerOptions struct {
	ServerName    string
	ServerVersion string
	Verbose       bool
	DBs           *store.DBs
}

// Server exposes the transcripts and memory of a project over MCP.
type Server struct {
	Server      *server.MCPServer
	transcripts *Transcripts
}

func NewServer(opts ServerOptions) *Server {
	if opts.Verbose {
		log.SetLogLevel(log.DebugLevel)
	}
	s := server.NewMCPServer(opts.ServerName, opts.ServerVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithLogging(),
	)
	t := NewTranscripts(opts.DBs)
	s.AddTools(getTranscriptTools(t)...)
	s.AddPrompt(mcp.NewPrompt(PromptReviewRun,
		mcp.WithPromptDescription("review the transcripts of a run"),
	), handleReviewRunPrompt)
	return &Server{Server: s, transcripts: t}
}

// ServeStdio blocks serving requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	defer s.transcripts.Close()
	return server.ServeStdio(s.Server)
}

func (s *Server) Close() { s.transcripts.Close() }
