// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat
// interface:
//   - Exchange: question submission and its resolution
//   - Sessions: registry reloads, navigation between sessions
//   - UI State: resize, focus, screen switching
package chat

import (
	"github.com/jeranaias/regchat-tui/internal/api"
	"github.com/jeranaias/regchat-tui/internal/exchange"
	"github.com/jeranaias/regchat-tui/internal/model"
)

// =============================================================================
// EXCHANGE MESSAGES
// =============================================================================

// ExchangeResultMsg delivers the outcome of an in-flight exchange back to
// the update loop. Exactly one of Resp and Err is set.
type ExchangeResultMsg struct {
	Pending *exchange.Pending
	Resp    *api.AskResponse
	Err     error
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// RegistryReloadedMsg carries a freshly loaded session registry, either
// after a local mutation or an external change picked up by the watcher.
type RegistryReloadedMsg struct {
	Sessions []model.ChatSession
}

// RegistryChangedMsg signals that the session registry changed and should
// be reloaded. FromWatcher is set when the change was observed on disk by
// the file watcher, which then needs re-arming.
type RegistryChangedMsg struct {
	FromWatcher bool
}

// NavigateMsg switches the active view to the given path.
type NavigateMsg struct {
	Path string
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// Focus identifies which pane owns keyboard input.
type Focus int

const (
	// FocusInput routes keys to the question input.
	FocusInput Focus = iota
	// FocusSidebar routes keys to the session list.
	FocusSidebar
)

// CitationToggleMsg shows or hides the citation detail overlay for the
// numbered citation of the latest assistant message.
type CitationToggleMsg struct {
	Index int
}
