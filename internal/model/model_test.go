// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hello")
	}
	if msg.ID == "" {
		t.Error("expected non-empty ID")
	}
	if _, err := strconv.ParseInt(msg.ID, 10, 64); err != nil {
		t.Errorf("ID %q should be a decimal timestamp: %v", msg.ID, err)
	}
}

func TestGenerateMessageID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateMessageID()
		if seen[id] {
			t.Fatalf("duplicate message ID %q", id)
		}
		seen[id] = true
	}
}

func TestNewAssistantMessage_Citations(t *testing.T) {
	citations := []Citation{{Source: "SAMA CSF", Page: 12}}
	msg := NewAssistantMessage("answer", citations)

	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want %q", msg.Role, RoleAssistant)
	}
	if len(msg.Citations) != 1 {
		t.Fatalf("Citations count = %d, want 1", len(msg.Citations))
	}
	if msg.Citations[0].Source != "SAMA CSF" {
		t.Errorf("Source = %q, want %q", msg.Citations[0].Source, "SAMA CSF")
	}
}

func TestMessage_JSONShape(t *testing.T) {
	msg := Message{
		ID:      "1700000000000",
		Role:    RoleAssistant,
		Content: "answer",
		Citations: []Citation{
			{Source: "NDMO Policy", Page: 3, Language: "en", Excerpt: "..."},
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// Persisted/wire field names are fixed.
	for _, field := range []string{`"id"`, `"role"`, `"content"`, `"highlighted_contexts"`, `"source"`, `"page"`, `"context_text"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("JSON missing field %s: %s", field, data)
		}
	}
}

func TestMessage_JSONOmitsEmptyCitations(t *testing.T) {
	data, err := json.Marshal(NewUserMessage("q"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "highlighted_contexts") {
		t.Errorf("user message should omit citations: %s", data)
	}
}

func TestCloneMessages(t *testing.T) {
	orig := []Message{
		NewUserMessage("q"),
		NewAssistantMessage("a", []Citation{{Source: "doc"}}),
	}

	clone := CloneMessages(orig)
	if len(clone) != 2 {
		t.Fatalf("clone length = %d, want 2", len(clone))
	}

	// Mutating the clone must not touch the original.
	clone[1].Citations[0].Source = "changed"
	clone = append(clone, NewUserMessage("extra"))

	if orig[1].Citations[0].Source != "doc" {
		t.Error("clone aliases original citations")
	}
	if len(orig) != 2 {
		t.Error("clone aliases original slice")
	}
}

func TestCloneMessages_Nil(t *testing.T) {
	if CloneMessages(nil) != nil {
		t.Error("clone of nil should be nil")
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("line one\nline two")
	if got := msg.Preview(50); got != "line one line two" {
		t.Errorf("Preview = %q", got)
	}
}

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{Role("other"), "other"},
	}
	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("known roles should be valid")
	}
	if Role("system").Valid() {
		t.Error("unknown role should be invalid")
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestNewSessionID_Format(t *testing.T) {
	id := NewSessionID()

	if !strings.HasPrefix(id, "session_") {
		t.Errorf("ID %q should start with session_", id)
	}
	parts := strings.Split(id, "_")
	if len(parts) != 3 {
		t.Fatalf("ID %q should have 3 segments", id)
	}
	if _, err := strconv.ParseInt(parts[1], 10, 64); err != nil {
		t.Errorf("timestamp segment %q invalid: %v", parts[1], err)
	}
	if len(parts[2]) != 7 {
		t.Errorf("random suffix %q should be 7 chars", parts[2])
	}
}

func TestNewSessionID_Unique(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if a == b {
		t.Errorf("two minted IDs collided: %q", a)
	}
}

func TestDeriveSessionName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short question kept whole", "Short question", "Short question"},
		{"exactly 35 runes kept whole", strings.Repeat("a", 35), strings.Repeat("a", 35)},
		{"longer truncated with ellipsis", strings.Repeat("a", 36), strings.Repeat("a", 35) + "..."},
		{
			"concrete scenario",
			"What are the key cybersecurity requirements for financial institutions regulated by SAMA?",
			"What are the key cybersecurity requ" + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveSessionName(tt.in); got != tt.want {
				t.Errorf("DeriveSessionName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewChatSession(t *testing.T) {
	s := NewChatSession("session_123_abcdefg", "What is NDMO?")

	if s.ID != "session_123_abcdefg" {
		t.Errorf("ID = %q", s.ID)
	}
	if s.Name != "What is NDMO?" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.Path != "/chat/session_123_abcdefg" {
		t.Errorf("Path = %q", s.Path)
	}
}

func TestIsSessionID(t *testing.T) {
	if !IsSessionID(NewSessionID()) {
		t.Error("minted ID should be recognized")
	}
	if IsSessionID("random-thing") {
		t.Error("foreign ID should not be recognized")
	}
}
