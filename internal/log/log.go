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

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level is the minimum level a message needs to be written.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, InfoLevel)
)

func newLogger(w io.Writer, lv Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: w != os.Stderr}
	return zerolog.New(out).Level(lv.zerolog()).With().Timestamp().Logger()
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
// Unknown names fall back to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// SetLogLevel changes the level of the package logger.
func SetLogLevel(lv Level) {
	mu.Lock()
	logger = logger.Level(lv.zerolog())
	mu.Unlock()
}

// SetOutput redirects the package logger, keeping its level.
func SetOutput(w io.Writer) {
	mu.Lock()
	lv := logger.GetLevel()
	logger = newLogger(w, InfoLevel).Level(lv)
	mu.Unlock()
}

// Logger returns the underlying zerolog logger, for callers that want fields.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(format string, args ...any) {
	l := Logger()
	l.Debug().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func Info(format string, args ...any) {
	l := Logger()
	l.Info().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func Warn(format string, args ...any) {
	l := Logger()
	l.Warn().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func Error(format string, args ...any) {
	l := Logger()
	l.Error().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}
