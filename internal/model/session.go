// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/regchat-tui/internal/util"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// SessionNameMaxRunes is the number of runes of the first question kept as
// the session display name before an ellipsis is appended.
const SessionNameMaxRunes = 35

// sessionIDPrefix marks generated session identifiers.
const sessionIDPrefix = "session_"

// ChatSession is one logical conversation thread: an opaque unique ID, a
// display name derived from the first question, and a navigable path.
// Sessions are never mutated after creation; they are removed only by
// explicit deletion.
type ChatSession struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// NewChatSession builds the session summary registered after the first
// successful exchange of a conversation. The name is derived from the first
// user question, the path from the session ID.
func NewChatSession(id, firstQuestion string) ChatSession {
	return ChatSession{
		ID:   id,
		Name: DeriveSessionName(firstQuestion),
		Path: "/chat/" + id,
	}
}

// DeriveSessionName truncates the first question to SessionNameMaxRunes
// runes, appending "..." when anything was cut off.
func DeriveSessionName(firstQuestion string) string {
	runes := []rune(firstQuestion)
	if len(runes) <= SessionNameMaxRunes {
		return firstQuestion
	}
	return string(runes[:SessionNameMaxRunes]) + "..."
}

// =============================================================================
// SESSION ID GENERATION
// =============================================================================

// NewSessionID mints a fresh session identifier of the form
// session_<unix-ms>_<random-suffix>. The timestamp component gives creation
// ordering; the random suffix gives collision resistance and
// unpredictability.
func NewSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return sessionIDPrefix + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + suffix
}

// IsSessionID reports whether s looks like a generated session identifier.
// Dangling or foreign IDs are still accepted as session keys by the store;
// this is only used for display heuristics.
func IsSessionID(s string) bool {
	return strings.HasPrefix(s, sessionIDPrefix)
}

// DisplayName returns the session name fitted to a display width, for
// rendering in the sidebar list.
func (s ChatSession) DisplayName(maxWidth int) string {
	return util.TruncateWidth(s.Name, maxWidth)
}
