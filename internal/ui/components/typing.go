// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/regchat-tui/internal/ui/styles"
)

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// typingFrameInterval is the animation cadence of the typing indicator.
const typingFrameInterval = 300 * time.Millisecond

// TypingTickMsg advances the typing indicator animation.
type TypingTickMsg struct {
	Time time.Time
}

// TypingTickCmd returns a command emitting the next animation frame.
func TypingTickCmd() tea.Cmd {
	return tea.Tick(typingFrameInterval, func(t time.Time) tea.Msg {
		return TypingTickMsg{Time: t}
	})
}

// TypingIndicator is the three-dot animation shown while an answer is
// pending.
type TypingIndicator struct {
	theme *styles.Theme
	frame int
}

// NewTypingIndicator creates a typing indicator.
func NewTypingIndicator(theme *styles.Theme) TypingIndicator {
	return TypingIndicator{theme: theme}
}

// Advance moves to the next animation frame.
func (t TypingIndicator) Advance() TypingIndicator {
	t.frame = (t.frame + 1) % 4
	return t
}

// View renders the indicator.
func (t TypingIndicator) View() string {
	dots := strings.Repeat("●", t.frame) + strings.Repeat("○", 3-t.frame)
	return t.theme.ThinkingText.Render("Thinking ") + t.theme.ThinkingDots.Render(dots)
}
