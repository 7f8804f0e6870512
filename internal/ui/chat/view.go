// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regchat-tui/internal/exchange"
	"github.com/jeranaias/regchat-tui/internal/model"
	"github.com/jeranaias/regchat-tui/internal/nav"
	"github.com/jeranaias/regchat-tui/internal/ui/components"
	"github.com/jeranaias/regchat-tui/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.path {
	case nav.PathSettings:
		return components.RenderPlaceholder(m.theme, "Settings", m.width, m.height)
	case nav.PathProfile:
		return components.RenderPlaceholder(m.theme, "Profile", m.width, m.height)
	}

	main := m.renderChatPane()

	var screen string
	if m.theme.GetLayoutMode() == styles.LayoutWide {
		screen = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
	} else {
		screen = main
	}

	if m.citationIdx >= 0 {
		if cits := m.latestCitations(); m.citationIdx < len(cits) {
			overlay := components.RenderCitationDetail(m.theme, cits[m.citationIdx], m.width)
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
		}
	}

	if m.toasts.HasToasts() {
		// Toasts overdraw the whole screen area; render them last.
		return screen + "\n" + components.RenderToastStack(m.theme, m.toasts.Active(), m.width, 0)
	}
	return screen
}

// renderChatPane renders the header, transcript, and input column.
func (m Model) renderChatPane() string {
	header := m.renderHeader()
	transcript := m.viewport.View()
	input := m.theme.InputContainer.Render(
		m.theme.InputPrompt.Render("> ") + m.input.View(),
	)
	status := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, transcript, input, status)
}

// renderHeader shows the app name and the active session.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("regchat")
	meta := ""
	if sess, ok := m.sessions.Find(m.controller.SessionID()); ok {
		meta = "  " + m.theme.HeaderMeta.Render(sess.Name)
	}
	return m.theme.Header.Width(m.contentWidth()).Render(title + meta)
}

// renderStatusBar shows keyboard hints.
func (m Model) renderStatusBar() string {
	if !m.showHints {
		return ""
	}
	hints := m.theme.ShortcutKey.Render("tab") + m.theme.ShortcutDesc.Render(" sidebar  ") +
		m.theme.ShortcutKey.Render("ctrl+n") + m.theme.ShortcutDesc.Render(" new chat  ") +
		m.theme.ShortcutKey.Render("alt+n") + m.theme.ShortcutDesc.Render(" citation  ") +
		m.theme.ShortcutKey.Render("ctrl+c") + m.theme.ShortcutDesc.Render(" quit")
	return m.theme.StatusBar.Width(m.contentWidth()).Render(hints)
}

// renderTranscript renders the conversation, or the welcome screen for an
// empty one.
func (m Model) renderTranscript() string {
	msgs := m.controller.Messages()
	width := m.viewport.Width

	if len(msgs) == 0 && m.controller.Status() == exchange.Idle {
		return components.RenderWelcome(m.theme, width, m.viewport.Height, m.showSuggestions)
	}

	blocks := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		switch msg.Role {
		case model.RoleUser:
			blocks = append(blocks, components.RenderUserMessage(m.theme, msg, width))
		case model.RoleAssistant:
			rendered := m.renderMarkdown(msg.Content, width-10)
			blocks = append(blocks, components.RenderAssistantMessage(m.theme, msg, rendered, width))
		}
	}

	if m.controller.Status() == exchange.Submitting {
		blocks = append(blocks, m.typing.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// contentWidth is the width of the chat column, sidebar excluded.
func (m Model) contentWidth() int {
	if m.theme.GetLayoutMode() == styles.LayoutWide {
		return m.width - m.sidebarWidth
	}
	return m.width
}
