// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/jeranaias/regchat-tui/internal/config"
	"github.com/jeranaias/regchat-tui/internal/storage"
)

// HandleSessions manages saved sessions from the command line.
func HandleSessions(args Args) error {
	sessions, err := openSessionStore()
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "list", "ls":
		return listSessions(sessions)
	case "delete", "rm":
		if len(args.Raw) == 0 {
			return fmt.Errorf("usage: regchat sessions delete <id>")
		}
		return deleteSessions(sessions, args.Raw)
	default:
		return fmt.Errorf("unknown sessions subcommand: %s", args.Subcommand)
	}
}

// openSessionStore opens the session store at the configured data dir.
func openSessionStore() (*storage.SessionStore, error) {
	dir, err := config.Global().DataDir()
	if err != nil {
		return nil, err
	}
	fs, err := storage.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return storage.NewSessionStore(fs), nil
}

func listSessions(sessions *storage.SessionStore) error {
	registry := sessions.Registry()
	if len(registry) == 0 {
		fmt.Println("No saved sessions.")
		return nil
	}

	for _, sess := range registry {
		n := len(sessions.Messages(sess.ID))
		fmt.Printf("%-32s  %3d messages  %s\n", sess.ID, n, sess.Name)
	}
	return nil
}

func deleteSessions(sessions *storage.SessionStore, ids []string) error {
	for _, id := range ids {
		if _, ok := sessions.Find(id); !ok {
			fmt.Printf("%s: not found (nothing to do)\n", id)
		}
		if err := sessions.DeleteSession(id); err != nil {
			return err
		}
	}
	return nil
}
