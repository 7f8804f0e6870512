// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strconv"
	"sync"
	"time"

	"github.com/jeranaias/regchat-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// CITATION TYPE
// =============================================================================

// Citation is a structured reference attached to an assistant message,
// describing the provenance of part of the answer. Only Source is required.
// The JSON field names follow the answering service's wire format, which is
// also the persisted format.
type Citation struct {
	FileID   int    `json:"file_id,omitempty"`
	Page     int    `json:"page,omitempty"`
	Source   string `json:"source"`
	Language string `json:"language,omitempty"`
	Excerpt  string `json:"context_text,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single turn in a conversation.
// Messages are immutable once created; citations appear only on
// assistant messages.
type Message struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"highlighted_contexts,omitempty"`
}

// NewUserMessage creates a new user message with a generated ID.
func NewUserMessage(content string) Message {
	return Message{
		ID:      generateMessageID(),
		Role:    RoleUser,
		Content: content,
	}
}

// NewAssistantMessage creates a new assistant message carrying citations.
func NewAssistantMessage(content string, citations []Citation) Message {
	return Message{
		ID:        generateMessageID(),
		Role:      RoleAssistant,
		Content:   content,
		Citations: citations,
	}
}

// Preview returns a single-line truncated preview of the message content.
func (m Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.CollapseWhitespace(m.Content), maxRunes)
}

// IsEmpty returns true if the message has no content.
func (m Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// CloneMessages returns a deep copy of a message list. The optimistic-insert
// rollback in the exchange controller snapshots through this so that later
// appends cannot alias the saved state.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	for i := range out {
		if len(msgs[i].Citations) > 0 {
			out[i].Citations = make([]Citation, len(msgs[i].Citations))
			copy(out[i].Citations, msgs[i].Citations)
		}
	}
	return out
}

// =============================================================================
// ID GENERATION
// =============================================================================

// Message IDs are the decimal unix-millisecond creation time, unique within
// a session. Two messages created inside the same millisecond would collide,
// so the generator nudges forward past the last issued ID.
var (
	idMu     sync.Mutex
	lastIDMs int64
)

// generateMessageID creates a timestamp-derived message ID.
func generateMessageID() string {
	idMu.Lock()
	defer idMu.Unlock()

	ms := time.Now().UnixMilli()
	if ms <= lastIDMs {
		ms = lastIDMs + 1
	}
	lastIDMs = ms
	return strconv.FormatInt(ms, 10)
}
