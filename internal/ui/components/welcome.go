// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regchat-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

// SuggestedQuestions are the starter questions offered on an empty chat.
// Selecting one submits it as-is.
var SuggestedQuestions = []string{
	"What are the core principles regarding ethical AI use in Saudi Arabia?",
	"What are the key IT governance requirements for SAMA-regulated organizations?",
	"How should government data be classified and protected in Saudi Arabia?",
	"What are the key cybersecurity requirements for financial institutions regulated by SAMA?",
	"What are the national standards for managing and protecting data in Saudi Arabia?",
	"How should data be classified under the NDMO policy?",
	"What are the key requirements of the SAMA Cybersecurity Framework?",
}

// maxVisibleSuggestions bounds the list so it fits small terminals.
const maxVisibleSuggestions = 5

// VisibleSuggestions returns the suggestions the welcome screen actually
// shows. The alt+number hotkeys index into this slice, so the two must
// stay in lockstep.
func VisibleSuggestions() []string {
	if len(SuggestedQuestions) > maxVisibleSuggestions {
		return SuggestedQuestions[:maxVisibleSuggestions]
	}
	return SuggestedQuestions
}

// RenderWelcome renders the empty-chat screen with suggested questions.
// Suggestions are numbered; alt+number submits one directly.
func RenderWelcome(theme *styles.Theme, width, height int, showSuggestions bool) string {
	title := theme.WelcomeTitle.Render("Regulatory Knowledge Assistant")
	info := theme.WelcomeInfo.Render("Ask about Saudi regulatory frameworks, or pick a question below.")

	parts := []string{title, "", info}

	if showSuggestions {
		parts = append(parts, "")
		for i, q := range VisibleSuggestions() {
			key := theme.SuggestionHotkey.Render(fmt.Sprintf("%d", i+1))
			parts = append(parts, theme.SuggestionItem.Render(key+"  "+q))
		}
		parts = append(parts, "", theme.ShortcutDesc.Render("alt+number to ask a suggestion"))
	}

	box := theme.WelcomeBox.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// RenderPlaceholder renders the settings/profile stub screens.
func RenderPlaceholder(theme *styles.Theme, title string, width, height int) string {
	content := theme.WelcomeTitle.Render(title) + "\n\n" +
		theme.PlaceholderScreen.Render("Nothing to configure yet. Press esc to go back.")
	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
