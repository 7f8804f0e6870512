// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/regchat-tui/internal/exchange"
	"github.com/jeranaias/regchat-tui/internal/model"
	"github.com/jeranaias/regchat-tui/internal/nav"
	"github.com/jeranaias/regchat-tui/internal/storage"
	"github.com/jeranaias/regchat-tui/internal/ui/components"
	"github.com/jeranaias/regchat-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen: sidebar, conversation
// viewport, input line, and transient overlays.
type Model struct {
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Navigation
	path  string
	focus Focus

	// Core
	controller *exchange.Controller
	sessions   *storage.SessionStore
	watcher    *storage.RegistryWatcher

	// UI components
	sidebar   components.Sidebar
	viewport  viewport.Model
	input     textinput.Model
	typing    components.TypingIndicator
	toasts    *components.ToastManager
	md        *markdownCache
	showHints bool

	// Citation overlay: index into the latest assistant message's
	// citations, -1 for hidden.
	citationIdx int

	sidebarWidth    int
	showSuggestions bool
}

// Options configure the chat model.
type Options struct {
	Theme           *styles.Theme
	Controller      *exchange.Controller
	Sessions        *storage.SessionStore
	Watcher         *storage.RegistryWatcher
	SidebarWidth    int
	ShowSuggestions bool
	InitialPath     string
}

// New creates the chat model and resolves the initial path to a session.
func New(opts Options) Model {
	input := textinput.New()
	input.Placeholder = "Ask a regulatory question..."
	input.CharLimit = 4000
	input.Focus()

	m := Model{
		theme:           opts.Theme,
		controller:      opts.Controller,
		sessions:        opts.Sessions,
		watcher:         opts.Watcher,
		sidebar:         components.NewSidebar(opts.Theme),
		input:           input,
		typing:          components.NewTypingIndicator(opts.Theme),
		toasts:          components.NewToastManager(),
		md:              &markdownCache{},
		citationIdx:     -1,
		sidebarWidth:    opts.SidebarWidth,
		showSuggestions: opts.ShowSuggestions,
		showHints:       true,
	}

	m.navigate(nav.Normalize(opts.InitialPath))
	m.sidebar = m.sidebar.SetSessions(opts.Sessions.Registry())
	return m
}

// navigate resolves a path into controller and view state. Unknown session
// ids degrade to an empty conversation under that id.
func (m *Model) navigate(path string) {
	m.path = nav.Normalize(path)
	m.citationIdx = -1

	if !nav.IsChat(m.path) {
		return
	}
	if id := nav.SessionID(m.path); id != "" {
		m.controller.LoadSession(id)
	} else {
		m.controller.NewConversation()
	}
	m.sidebar = m.sidebar.SetActive(m.controller.SessionID())
	m.refreshViewport()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, components.ToastTickCmd()}
	if m.watcher != nil {
		cmds = append(cmds, watchRegistryCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Path returns the active navigation path.
func (m Model) Path() string {
	return m.path
}

// =============================================================================
// COMMANDS
// =============================================================================

// askCmd runs the service call off the update loop and delivers the result.
func askCmd(ctl *exchange.Controller, p *exchange.Pending) tea.Cmd {
	return func() tea.Msg {
		resp, err := ctl.Ask(context.Background(), p)
		return ExchangeResultMsg{Pending: p, Resp: resp, Err: err}
	}
}

// watchRegistryCmd waits for the next external registry change.
func watchRegistryCmd(w *storage.RegistryWatcher) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.Changes(); ok {
			return RegistryChangedMsg{FromWatcher: true}
		}
		return nil
	}
}

// reloadRegistryCmd reads the registry off the update loop.
func reloadRegistryCmd(sessions *storage.SessionStore) tea.Cmd {
	return func() tea.Msg {
		return RegistryReloadedMsg{Sessions: sessions.Registry()}
	}
}

// deleteSessionCmd removes a session, then reloads the registry.
func deleteSessionCmd(sessions *storage.SessionStore, id string) tea.Cmd {
	return func() tea.Msg {
		if err := sessions.DeleteSession(id); err != nil {
			log.Error().Err(err).Str("session", id).Msg("failed to delete session")
		}
		return RegistryReloadedMsg{Sessions: sessions.Registry()}
	}
}

// =============================================================================
// RENDERING STATE
// =============================================================================

// refreshViewport rebuilds the conversation transcript.
func (m *Model) refreshViewport() {
	if m.width == 0 {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// markdownCache holds the glamour renderer behind a pointer so the cache
// survives Bubble Tea's model copying.
type markdownCache struct {
	renderer *glamour.TermRenderer
	width    int
}

// renderMarkdown renders assistant markdown through glamour, falling back
// to the raw text when rendering fails.
func (m *Model) renderMarkdown(content string, width int) string {
	if m.md.renderer == nil || m.md.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		m.md.renderer = r
		m.md.width = width
	}
	out, err := m.md.renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

// latestCitations returns the citations of the newest assistant message.
func (m *Model) latestCitations() []model.Citation {
	msgs := m.controller.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant {
			return msgs[i].Citations
		}
	}
	return nil
}
