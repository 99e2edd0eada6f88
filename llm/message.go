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

package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) valid() bool {
	return r == RoleSystem || r == RoleUser || r == RoleAssistant
}

// Message is one role-tagged entry of a Conversation.
type Message struct {
	Role    Role   `json:"role" jsonschema:"enum=system,enum=user,enum=assistant"`
	Content string `json:"content"`
}

func SystemMessage(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func UserMessage(content string) Message      { return Message{Role: RoleUser, Content: content} }
func AssistantMessage(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Conversation is an ordered exchange with the model. The last message is
// the result of the exchange.
type Conversation []Message

// Last returns the final message, or false for an empty conversation.
func (c Conversation) Last() (Message, bool) {
	if len(c) == 0 {
		return Message{}, false
	}
	return c[len(c)-1], true
}

// Append returns a new conversation; c itself is never modified.
func (c Conversation) Append(msgs ...Message) Conversation {
	out := make(Conversation, 0, len(c)+len(msgs))
	out = append(out, c...)
	return append(out, msgs...)
}

func (c Conversation) toSchema() []*schema.Message {
	out := make([]*schema.Message, 0, len(c))
	for _, m := range c {
		out = append(out, &schema.Message{Role: schema.RoleType(m.Role), Content: m.Content})
	}
	return out
}

// LogVersion is the current version of the serialized conversation.
const LogVersion = 1

var (
	ErrUnsupportedLog = errors.New("llm: unsupported conversation log")
	ErrInvalidUTF8    = errors.New("llm: message content is not valid UTF-8")
)

// ConversationLog is the persisted form of a Conversation.
type ConversationLog struct {
	Version  int       `json:"version"`
	Messages []Message `json:"messages"`
}

// MarshalConversation serializes c. An empty conversation is written as an
// empty message list. Content must be valid UTF-8 so that it reads back
// byte for byte.
func MarshalConversation(c Conversation) (string, error) {
	for i, m := range c {
		if !utf8.ValidString(m.Content) {
			return "", fmt.Errorf("%w: message %d", ErrInvalidUTF8, i)
		}
	}
	msgs := []Message(c)
	if msgs == nil {
		msgs = []Message{}
	}
	bs, err := json.Marshal(ConversationLog{Version: LogVersion, Messages: msgs})
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// UnmarshalConversation decodes a log written by MarshalConversation. Bare
// JSON arrays of {role, content} are accepted as version 0.
func UnmarshalConversation(data string) (Conversation, error) {
	raw := bytes.TrimSpace([]byte(data))
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrUnsupportedLog)
	}
	var msgs []Message
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedLog, err)
		}
	} else {
		var l ConversationLog
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedLog, err)
		}
		if l.Version < 1 || l.Version > LogVersion {
			return nil, fmt.Errorf("%w: version %d", ErrUnsupportedLog, l.Version)
		}
		msgs = l.Messages
	}
	for i, m := range msgs {
		if !m.Role.valid() {
			return nil, fmt.Errorf("%w: message %d has role %q", ErrUnsupportedLog, i, m.Role)
		}
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return Conversation(msgs), nil
}
