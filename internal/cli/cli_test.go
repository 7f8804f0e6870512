// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"testing"
)

func parseArgv(t *testing.T, argv ...string) (Command, Args) {
	t.Helper()
	old := os.Args
	t.Cleanup(func() { os.Args = old })
	os.Args = append([]string{"regchat"}, argv...)
	return Parse()
}

func TestParseDefaultIsTUI(t *testing.T) {
	cmd, _ := parseArgv(t)
	if cmd != CmdTUI {
		t.Errorf("cmd = %v, want CmdTUI", cmd)
	}
}

func TestParseAsk(t *testing.T) {
	cmd, args := parseArgv(t, "ask", "what", "is", "required?")
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Query != "what is required?" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParseSessionsDelete(t *testing.T) {
	cmd, args := parseArgv(t, "sessions", "delete", "session_1_aaaaaaa")
	if cmd != CmdSessions {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Subcommand != "delete" {
		t.Errorf("subcommand = %q", args.Subcommand)
	}
	if len(args.Raw) != 1 || args.Raw[0] != "session_1_aaaaaaa" {
		t.Errorf("raw = %v", args.Raw)
	}
}

func TestParseFlags(t *testing.T) {
	cmd, args := parseArgv(t, "--endpoint", "http://localhost:8080", "-q", "ask", "hi")
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Endpoint != "http://localhost:8080" {
		t.Errorf("endpoint = %q", args.Endpoint)
	}
	if !args.Quiet {
		t.Error("quiet should be set")
	}
}

func TestParseUnknownCommandFallsBackToHelp(t *testing.T) {
	cmd, _ := parseArgv(t, "frobnicate")
	if cmd != CmdHelp {
		t.Errorf("cmd = %v, want CmdHelp", cmd)
	}
}
