// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/regchat-tui/internal/api"
	"github.com/jeranaias/regchat-tui/internal/config"
	"github.com/jeranaias/regchat-tui/internal/model"
)

// HandleAsk runs a one-shot question: no session, no persistence, answer
// rendered to stdout.
func HandleAsk(args Args) error {
	if args.Query == "" {
		return fmt.Errorf("usage: regchat ask \"question\"")
	}

	cfg := config.Global()
	endpoint := cfg.API.Endpoint
	if args.Endpoint != "" {
		endpoint = args.Endpoint
	}

	client := api.NewClient(endpoint).
		WithTimeout(time.Duration(cfg.API.TimeoutSecs) * time.Second)

	if !args.Quiet {
		fmt.Fprintln(os.Stderr, "Asking...")
	}

	resp, err := client.Ask(context.Background(), api.AskRequest{
		SessionID: model.NewSessionID(),
		Question:  args.Query,
		History: []api.HistoryEntry{
			{Role: "user", Content: args.Query},
		},
	})
	if err != nil {
		return err
	}

	fmt.Println(renderAnswer(resp.Answer))

	if len(resp.HighlightedContexts) > 0 && !args.Quiet {
		fmt.Println("Sources:")
		for i, c := range resp.HighlightedContexts {
			line := fmt.Sprintf("  [%d] %s", i+1, c.Source)
			if c.Page > 0 {
				line += fmt.Sprintf(", p.%d", c.Page)
			}
			fmt.Println(line)
		}
	}
	return nil
}

// renderAnswer formats markdown for the terminal, falling back to the raw
// text when rendering is unavailable (e.g. piped output).
func renderAnswer(answer string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return answer
	}
	out, err := r.Render(answer)
	if err != nil {
		return answer
	}
	return out
}
