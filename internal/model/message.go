// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) String() string {
	return string(r)
}

// DisplayName is the label shown above a message bubble.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "KnowMe"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry in the chat transcript. Messages are never edited
// after they are appended.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Sources names the documents the assistant drew on. User messages
	// never carry sources.
	Sources []string `json:"sources,omitempty"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        newID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user-authored message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant reply. Blank source names are
// dropped.
func NewAssistantMessage(content string, sources []string) Message {
	msg := NewMessage(RoleAssistant, content)
	for _, s := range sources {
		if s = strings.TrimSpace(s); s != "" {
			msg.Sources = append(msg.Sources, s)
		}
	}
	return msg
}

// IsUser reports whether the user wrote the message.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// HasSources reports whether the reply cited any documents.
func (m Message) HasSources() bool {
	return len(m.Sources) > 0
}

// SourceLine joins the sources for display, e.g. "a.pdf, b.pdf".
func (m Message) SourceLine() string {
	return strings.Join(m.Sources, ", ")
}

// TimeLabel formats the timestamp the way the transcript shows it.
func (m Message) TimeLabel() string {
	return m.Timestamp.Format("3:04 PM")
}

// Clone returns a copy that shares no slices with m.
func (m Message) Clone() Message {
	m.Sources = slices.Clone(m.Sources)
	return m
}

// newID returns a time-ordered identifier so IDs sort with the transcript.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "msg_" + uuid.NewString()
	}
	return "msg_" + id.String()
}
