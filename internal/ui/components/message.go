// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regchat-tui/internal/model"
	"github.com/jeranaias/regchat-tui/internal/ui/styles"
	"github.com/jeranaias/regchat-tui/internal/util"
)

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

// RenderUserMessage renders a user message as a right-leaning blue bubble.
func RenderUserMessage(theme *styles.Theme, msg model.Message, width int) string {
	maxContent := width - 12
	if maxContent < 20 {
		maxContent = 20
	}
	wrapped := WrapText(msg.Content, maxContent)

	bubble := theme.UserBubble.
		Width(minInt(maxLineWidth(wrapped)+4, width-8)).
		Render(wrapped)

	role := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("you")

	block := lipgloss.JoinVertical(lipgloss.Right, role, bubble)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
}

// RenderAssistantMessage renders an assistant message. The content arrives
// pre-rendered (markdown through glamour) from the chat view; citation
// chips are appended below the bubble.
func RenderAssistantMessage(theme *styles.Theme, msg model.Message, rendered string, width int) string {
	content := strings.TrimRight(rendered, "\n")
	if content == "" {
		content = "..."
	}

	bubble := theme.AssistantBubble.
		MaxWidth(width - 6).
		Render(content)

	role := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("assistant")

	parts := []string{role, bubble}
	if chips := RenderCitationChips(theme, msg.Citations); chips != "" {
		parts = append(parts, chips)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// HELPERS
// =============================================================================

func maxLineWidth(s string) int {
	max := 0
	for _, line := range strings.Split(s, "\n") {
		if w := util.StringWidth(line); w > max {
			max = w
		}
	}
	return max
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
