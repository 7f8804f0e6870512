// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/regchat-tui/internal/exchange"
	"github.com/jeranaias/regchat-tui/internal/nav"
	"github.com/jeranaias/regchat-tui/internal/ui/components"
	"github.com/jeranaias/regchat-tui/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ExchangeResultMsg:
		return m.handleExchangeResult(msg)

	case RegistryChangedMsg:
		cmds := []tea.Cmd{reloadRegistryCmd(m.sessions)}
		// Only the watcher goroutine gets re-armed; subscriber-driven
		// changes must not stack extra listeners on its channel.
		if msg.FromWatcher && m.watcher != nil {
			cmds = append(cmds, watchRegistryCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case RegistryReloadedMsg:
		m.sidebar = m.sidebar.SetSessions(msg.Sessions)
		// The active session may have been deleted elsewhere.
		if id := m.controller.SessionID(); id != "" && m.controller.Registered() {
			if _, ok := m.sessions.Find(id); !ok {
				m.navigate(nav.PathNewChat)
			}
		}
		return m, nil

	case NavigateMsg:
		m.navigate(msg.Path)
		return m, nil

	case components.SessionSelectedMsg:
		m.navigate(nav.ChatPath(msg.SessionID))
		m.focus = FocusInput
		m.input.Focus()
		return m, nil

	case components.SessionDeleteMsg:
		return m.handleDelete(msg.SessionID)

	case components.NewChatRequestedMsg:
		m.navigate(nav.PathNewChat)
		m.focus = FocusInput
		m.input.Focus()
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	case components.TypingTickMsg:
		if m.controller.Status() == exchange.Submitting {
			m.typing = m.typing.Advance()
			m.refreshViewport()
			return m, components.TypingTickCmd()
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

// handleResize lays the panes out for the new terminal size.
func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	sidebarW := 0
	if m.theme.GetLayoutMode() == styles.LayoutWide {
		sidebarW = m.sidebarWidth
	}
	m.sidebar = m.sidebar.SetSize(sidebarW, msg.Height-2)

	contentW := msg.Width - sidebarW
	m.viewport.Width = contentW - 2
	m.viewport.Height = msg.Height - 5
	m.input.Width = contentW - 6
	m.md.renderer = nil // re-create at the new wrap width

	m.refreshViewport()
	return m, nil
}

// handleKey routes keys by focus and handles global shortcuts.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.watcher != nil {
			m.watcher.Close()
		}
		return m, tea.Quit

	case "tab":
		if m.focus == FocusInput {
			m.focus = FocusSidebar
			m.input.Blur()
		} else {
			m.focus = FocusInput
			m.input.Focus()
		}
		return m, nil

	case "ctrl+n":
		m.navigate(nav.PathNewChat)
		return m, nil

	case "ctrl+s":
		m.navigate(nav.PathSettings)
		return m, nil

	case "ctrl+p":
		m.navigate(nav.PathProfile)
		return m, nil

	case "esc":
		switch {
		case m.citationIdx >= 0:
			m.citationIdx = -1
		case m.path != nav.PathNewChat && !nav.IsChat(m.path):
			m.navigate(nav.PathNewChat)
		case m.focus == FocusSidebar:
			m.focus = FocusInput
			m.input.Focus()
		}
		return m, nil

	case "x":
		if m.focus == FocusSidebar || !m.input.Focused() {
			m.toasts.Dismiss()
			return m, nil
		}
	}

	// alt+1..9: suggestion on an empty chat, else citation detail toggle.
	if key := msg.String(); strings.HasPrefix(key, "alt+") {
		if n, err := strconv.Atoi(strings.TrimPrefix(key, "alt+")); err == nil && n >= 1 {
			if suggestions := components.VisibleSuggestions(); len(m.controller.Messages()) == 0 && n <= len(suggestions) {
				return m.submit(suggestions[n-1])
			}
			if cits := m.latestCitations(); n <= len(cits) {
				if m.citationIdx == n-1 {
					m.citationIdx = -1
				} else {
					m.citationIdx = n - 1
				}
				return m, nil
			}
		}
	}

	if m.focus == FocusSidebar {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	if msg.String() == "enter" {
		return m.submit(m.input.Value())
	}

	return m.updateComponents(msg)
}

// submit runs the optimistic submission pipeline. Refused submissions
// (blank input, exchange already in flight) change nothing.
func (m Model) submit(input string) (Model, tea.Cmd) {
	p := m.controller.Begin(input)
	if p == nil {
		return m, nil
	}

	m.input.SetValue("")
	m.sidebar = m.sidebar.SetActive(m.controller.SessionID())
	m.refreshViewport()

	return m, tea.Batch(askCmd(m.controller, p), components.TypingTickCmd())
}

// handleExchangeResult resolves an in-flight exchange.
func (m Model) handleExchangeResult(msg ExchangeResultMsg) (Model, tea.Cmd) {
	var out exchange.Outcome
	if msg.Err != nil {
		out = m.controller.Fail(msg.Pending, msg.Err)
	} else {
		out = m.controller.Complete(msg.Pending, msg.Resp)
	}

	if out.Notification != "" {
		m.toasts.AddError(out.Notification)
	}
	if out.Navigate != "" {
		m.path = nav.Normalize(out.Navigate)
		m.sidebar = m.sidebar.SetActive(m.controller.SessionID())
	}
	m.refreshViewport()

	if out.Registered {
		return m, reloadRegistryCmd(m.sessions)
	}
	return m, nil
}

// handleDelete removes a session; deleting the active one navigates away.
func (m Model) handleDelete(id string) (Model, tea.Cmd) {
	if id == m.controller.SessionID() {
		m.navigate(nav.PathNewChat)
	}
	return m, deleteSessionCmd(m.sessions, id)
}

// updateComponents forwards messages to the focused bubbles.
func (m Model) updateComponents(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}
