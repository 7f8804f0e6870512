// regchat - terminal client for a regulatory knowledge assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/regchat-tui/internal/api"
	"github.com/jeranaias/regchat-tui/internal/cli"
	"github.com/jeranaias/regchat-tui/internal/config"
	"github.com/jeranaias/regchat-tui/internal/exchange"
	"github.com/jeranaias/regchat-tui/internal/logging"
	"github.com/jeranaias/regchat-tui/internal/nav"
	"github.com/jeranaias/regchat-tui/internal/storage"
	"github.com/jeranaias/regchat-tui/internal/ui/chat"
	"github.com/jeranaias/regchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// appModel adapts the chat model to the tea.Model interface the runtime
// expects at the root.
type appModel struct {
	chat chat.Model
}

func (a appModel) Init() tea.Cmd {
	return a.chat.Init()
}

func (a appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a appModel) View() string {
	return a.chat.View()
}

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		logging.InitConsole(config.Global().Logging.Level)
		if err := cli.HandleAsk(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdSessions:
		logging.InitConsole(config.Global().Logging.Level)
		if err := cli.HandleSessions(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdConfig:
		if err := cli.HandleConfig(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

// runTUI wires storage, the API client and the exchange controller into the
// Bubble Tea program.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	config.SetGlobal(cfg)

	dataDir, err := cfg.DataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot resolve data directory: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	if err := logging.InitFile(dataDir, cfg.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	store, err := storage.NewFileStore(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sessions := storage.NewSessionStore(store)

	watcher, err := storage.WatchRegistry(sessions)
	if err != nil {
		// Degraded but workable: external changes just won't be seen.
		log.Warn().Err(err).Msg("registry watching unavailable")
		watcher = nil
	}

	endpoint := cfg.API.Endpoint
	if args.Endpoint != "" {
		endpoint = args.Endpoint
	}
	client := api.NewClient(endpoint).
		WithTimeout(time.Duration(cfg.API.TimeoutSecs) * time.Second)

	m := chat.New(chat.Options{
		Theme:           styles.NewTheme(cfg.UI.Theme),
		Controller:      exchange.NewController(sessions, client),
		Sessions:        sessions,
		Watcher:         watcher,
		SidebarWidth:    cfg.UI.SidebarWidth,
		ShowSuggestions: cfg.UI.ShowSuggestions,
		InitialPath:     nav.PathNewChat,
	})

	p := tea.NewProgram(appModel{chat: m}, tea.WithAltScreen())

	// In-process registry mutations refresh the sidebar; the fsnotify
	// watcher only covers changes made by other instances. Send must not
	// run on the notifying goroutine: mutations can originate from the
	// update loop itself.
	sessions.Subscribe(func() {
		go p.Send(chat.RegistryChangedMsg{})
	})

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
