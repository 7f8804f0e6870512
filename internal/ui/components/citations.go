// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regchat-tui/internal/model"
	"github.com/jeranaias/regchat-tui/internal/ui/styles"
)

// =============================================================================
// CITATION RENDERING
// =============================================================================

// RenderCitationChips renders the numbered source markers shown under an
// assistant message, e.g. "[1] SAMA CSF p.12  [2] AML Law p.3".
func RenderCitationChips(theme *styles.Theme, citations []model.Citation) string {
	if len(citations) == 0 {
		return ""
	}

	chips := make([]string, 0, len(citations))
	for i, c := range citations {
		label := fmt.Sprintf("[%d] %s", i+1, c.Source)
		if c.Page > 0 {
			label += fmt.Sprintf(" p.%d", c.Page)
		}
		chips = append(chips, theme.CitationChip.Render(label))
	}
	return strings.Join(chips, "  ")
}

// RenderCitationDetail renders the expanded view of one citation: source,
// page, language and the supporting excerpt.
func RenderCitationDetail(theme *styles.Theme, c model.Citation, width int) string {
	maxWidth := width - 8
	if maxWidth < 30 {
		maxWidth = 30
	}

	header := theme.CitationSource.Render(c.Source)
	if c.Page > 0 {
		header += theme.HeaderMeta.Render(fmt.Sprintf("  page %d", c.Page))
	}
	if c.Language != "" {
		header += theme.HeaderMeta.Render("  " + c.Language)
	}

	parts := []string{header}
	if c.Excerpt != "" {
		parts = append(parts, "", theme.CitationExcerpt.Render(WrapText(c.Excerpt, maxWidth)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return theme.CitationBox.MaxWidth(maxWidth + 6).Render(content)
}
