// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/regchat-tui/internal/model"
)

func TestWatchRegistryReportsExternalSave(t *testing.T) {
	s := newTestSessions(t)

	w, err := WatchRegistry(s)
	require.NoError(t, err)
	defer w.Close()

	// Simulate another process writing the registry.
	other := NewSessionStore(s.store)
	require.NoError(t, other.Register(model.NewChatSession("session_1_aaaaaaa", "q")))

	select {
	case _, ok := <-w.Changes():
		require.True(t, ok, "changes channel closed unexpectedly")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for registry change")
	}
}

func TestWatchRegistryIgnoresOtherFiles(t *testing.T) {
	s := newTestSessions(t)

	w, err := WatchRegistry(s)
	require.NoError(t, err)
	defer w.Close()

	err = s.SaveMessages("session_1_aaaaaaa", []model.Message{model.NewUserMessage("hi")})
	require.NoError(t, err)

	select {
	case <-w.Changes():
		t.Fatal("message log write should not trigger a registry change")
	case <-time.After(300 * time.Millisecond):
	}
}
