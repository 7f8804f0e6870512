// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/jeranaias/regchat-tui/internal/config"
)

// HandleConfig prints the effective configuration after file, env and flag
// resolution.
func HandleConfig(args Args) error {
	cfg := config.Global()

	dataDir, err := cfg.DataDir()
	if err != nil {
		dataDir = "(unresolved)"
	}

	fmt.Println("regchat configuration:")
	fmt.Printf("  api.endpoint      %s\n", cfg.API.Endpoint)
	fmt.Printf("  api.timeout_secs  %d\n", cfg.API.TimeoutSecs)
	fmt.Printf("  storage.data_dir  %s\n", dataDir)
	fmt.Printf("  ui.theme          %s\n", cfg.UI.Theme)
	fmt.Printf("  ui.sidebar_width  %d\n", cfg.UI.SidebarWidth)
	fmt.Printf("  logging.level     %s\n", cfg.Logging.Level)
	return nil
}
