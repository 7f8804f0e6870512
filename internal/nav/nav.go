// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav models the application's navigable locations as paths.
//
// Paths look like browser routes ("/chat", "/chat/<id>", "/settings") so
// session links stored in the registry stay portable across frontends.
package nav

import (
	"strings"

	"github.com/jeranaias/regchat-tui/internal/model"
)

// Well-known paths.
const (
	// PathNewChat is the blank chat screen with no session yet.
	PathNewChat = "/chat"

	// PathSettings is the settings screen.
	PathSettings = "/settings"

	// PathProfile is the profile screen.
	PathProfile = "/profile"
)

// chatPrefix precedes a session id in a chat path.
const chatPrefix = "/chat/"

// ChatPath returns the path for an existing session.
func ChatPath(sessionID string) string {
	return chatPrefix + sessionID
}

// SessionID extracts the session id from a chat path. Returns "" for
// non-chat paths and for the blank chat screen.
func SessionID(path string) string {
	if !strings.HasPrefix(path, chatPrefix) {
		return ""
	}
	id := strings.TrimPrefix(path, chatPrefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// IsChat reports whether path is a chat screen, with or without a session.
func IsChat(path string) bool {
	return path == PathNewChat || SessionID(path) != ""
}

// Normalize maps unknown or malformed paths to the blank chat screen, and
// chat paths with ids that are not session ids likewise.
func Normalize(path string) string {
	switch path {
	case PathNewChat, PathSettings, PathProfile:
		return path
	}
	if id := SessionID(path); id != "" && model.IsSessionID(id) {
		return path
	}
	return PathNewChat
}
