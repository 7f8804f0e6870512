// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for regchat.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdSessions
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Endpoint string
	Quiet    bool

	// Command-specific
	Query      string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `regchat - terminal client for the regulatory knowledge assistant

Ask questions about Saudi regulatory frameworks (SAMA, NDMO, NCA) and get
answers with source citations.

Usage:
  regchat                      Start TUI (default)
  regchat ask "question"       Ask a single question and print the answer
  regchat sessions list        List saved chat sessions
  regchat sessions delete <id> Delete a session and its messages
  regchat config               Show effective configuration
  regchat version              Show version
  regchat help                 Show this help

Flags:
  --endpoint URL   Override the answering service endpoint
  -q, --quiet      Suppress non-essential output

Environment:
  REGCHAT_ENDPOINT      Answering service base URL
  REGCHAT_TIMEOUT_SECS  Per-request timeout
  REGCHAT_DATA_DIR      Data directory (default ~/.regchat)
  REGCHAT_THEME         auto | dark | light
`

// Parse reads os.Args and returns the command with its arguments.
func Parse() (Command, Args) {
	args := Args{}
	rest := make([]string, 0, len(os.Args))

	// Flags first, in any position.
	argv := os.Args[1:]
	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch {
		case a == "--endpoint" && i+1 < len(argv):
			i++
			args.Endpoint = argv[i]
		case strings.HasPrefix(a, "--endpoint="):
			args.Endpoint = strings.TrimPrefix(a, "--endpoint=")
		case a == "-q" || a == "--quiet":
			args.Quiet = true
		case a == "-h" || a == "--help":
			return CmdHelp, args
		case a == "-v" || a == "--version":
			return CmdVersion, args
		default:
			rest = append(rest, a)
		}
	}

	if len(rest) == 0 {
		return CmdTUI, args
	}

	cmd := rest[0]
	rest = rest[1:]
	args.Raw = rest

	switch cmd {
	case "ask":
		args.Query = strings.Join(rest, " ")
		return CmdAsk, args
	case "session", "sessions":
		if len(rest) > 0 {
			args.Subcommand = rest[0]
			args.Raw = rest[1:]
		}
		return CmdSessions, args
	case "config":
		return CmdConfig, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("regchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
