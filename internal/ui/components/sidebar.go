// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regchat-tui/internal/model"
	"github.com/jeranaias/regchat-tui/internal/ui/styles"
	"github.com/jeranaias/regchat-tui/internal/util"
)

// =============================================================================
// SIDEBAR MESSAGES
// =============================================================================

// SessionSelectedMsg is emitted when the user opens a session from the list.
type SessionSelectedMsg struct {
	SessionID string
}

// SessionDeleteMsg is emitted when the user confirms deleting a session.
type SessionDeleteMsg struct {
	SessionID string
}

// NewChatRequestedMsg is emitted when the user asks for a fresh conversation.
type NewChatRequestedMsg struct{}

// =============================================================================
// SIDEBAR
// =============================================================================

// Sidebar renders the session list and handles selection and deletion.
// While focused it owns j/k/enter/d keys; the chat model decides focus.
type Sidebar struct {
	theme *styles.Theme

	sessions []model.ChatSession
	cursor   int
	activeID string

	// confirmDelete holds the id awaiting delete confirmation, "" for none.
	confirmDelete string

	width  int
	height int
}

// NewSidebar creates an empty sidebar.
func NewSidebar(theme *styles.Theme) Sidebar {
	return Sidebar{theme: theme}
}

// SetSessions replaces the session list, clamping the cursor.
func (s Sidebar) SetSessions(sessions []model.ChatSession) Sidebar {
	s.sessions = sessions
	if s.cursor >= len(sessions) {
		s.cursor = len(sessions) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	// A pending confirmation for a session that vanished is stale.
	if s.confirmDelete != "" {
		found := false
		for _, sess := range sessions {
			if sess.ID == s.confirmDelete {
				found = true
				break
			}
		}
		if !found {
			s.confirmDelete = ""
		}
	}
	return s
}

// SetActive marks the session currently open in the chat view.
func (s Sidebar) SetActive(sessionID string) Sidebar {
	s.activeID = sessionID
	return s
}

// SetSize updates the sidebar dimensions.
func (s Sidebar) SetSize(width, height int) Sidebar {
	s.width = width
	s.height = height
	return s
}

// Update handles key input while the sidebar has focus.
func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch key.String() {
	case "up", "k":
		s.confirmDelete = ""
		if s.cursor > 0 {
			s.cursor--
		}

	case "down", "j":
		s.confirmDelete = ""
		if s.cursor < len(s.sessions)-1 {
			s.cursor++
		}

	case "enter":
		if s.confirmDelete != "" {
			id := s.confirmDelete
			s.confirmDelete = ""
			return s, func() tea.Msg { return SessionDeleteMsg{SessionID: id} }
		}
		if s.cursor < len(s.sessions) {
			id := s.sessions[s.cursor].ID
			return s, func() tea.Msg { return SessionSelectedMsg{SessionID: id} }
		}

	case "d", "delete":
		if s.cursor < len(s.sessions) {
			s.confirmDelete = s.sessions[s.cursor].ID
		}

	case "esc":
		s.confirmDelete = ""

	case "n":
		return s, func() tea.Msg { return NewChatRequestedMsg{} }
	}

	return s, nil
}

// View renders the sidebar.
func (s Sidebar) View() string {
	title := s.theme.SidebarTitle.Render("Chats")
	hint := s.theme.ShortcutDesc.Render("n new · d delete")

	var rows []string
	rows = append(rows, title, "")

	if len(s.sessions) == 0 {
		rows = append(rows, s.theme.ShortcutDesc.Render("No chats yet"))
	}

	itemWidth := s.width - 4
	if itemWidth < 10 {
		itemWidth = 10
	}

	for i, sess := range s.sessions {
		// Pad so selection/active backgrounds fill the row.
		label := util.PadRight(sess.DisplayName(itemWidth), itemWidth)

		var rendered string
		switch {
		case sess.ID == s.confirmDelete:
			rendered = s.theme.DeleteConfirm.Render("Delete? ⏎ confirm / esc cancel")
		case i == s.cursor:
			rendered = s.theme.SessionItemSelected.Render(label)
		case sess.ID == s.activeID:
			rendered = s.theme.SessionItemActive.Render(label)
		default:
			rendered = s.theme.SessionItem.Render(label)
		}
		rows = append(rows, rendered)
	}

	rows = append(rows, "", hint)

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return s.theme.Sidebar.
		Width(s.width).
		Height(s.height).
		Render(content)
}

// Cursor returns the highlighted index, for tests.
func (s Sidebar) Cursor() int {
	return s.cursor
}

// PendingDelete returns the id awaiting confirmation, for tests.
func (s Sidebar) PendingDelete() string {
	return s.confirmDelete
}
