// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/regchat-tui/internal/model"
)

// =============================================================================
// KEYS
// =============================================================================

// RegistryKey holds the list of all known sessions, newest first.
const RegistryKey = "all-sessions"

// messagesKey returns the key holding a session's message log.
func messagesKey(sessionID string) string {
	return "history-" + sessionID
}

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore manages the session registry and per-session message logs on
// top of a Store. It is safe for concurrent use.
type SessionStore struct {
	store Store

	mu sync.Mutex

	obsMu     sync.Mutex
	observers []func()
}

// NewSessionStore wraps store with session-aware operations.
func NewSessionStore(store Store) *SessionStore {
	return &SessionStore{store: store}
}

// RegistryPath returns the on-disk location of the session registry, for
// change watching.
func (s *SessionStore) RegistryPath() string {
	return s.store.Path(RegistryKey)
}

// Registry returns all known sessions, newest first. A missing registry
// yields an empty list. A corrupt registry also yields an empty list; the
// damage is logged and the file is left in place for inspection.
func (s *SessionStore) Registry() []model.ChatSession {
	var sessions []model.ChatSession
	err := s.store.Load(RegistryKey, &sessions)
	switch {
	case err == nil:
		return sessions
	case errors.Is(err, ErrNotFound):
		return nil
	case errors.Is(err, ErrCorrupt):
		log.Warn().Err(err).Msg("session registry unreadable, starting empty")
		return nil
	default:
		log.Warn().Err(err).Msg("failed to read session registry")
		return nil
	}
}

// SaveRegistry persists the full session list.
func (s *SessionStore) SaveRegistry(sessions []model.ChatSession) error {
	if sessions == nil {
		sessions = []model.ChatSession{}
	}
	if err := s.store.Save(RegistryKey, sessions); err != nil {
		return fmt.Errorf("failed to save session registry: %w", err)
	}
	s.notify()
	return nil
}

// Register prepends a session to the registry and persists it. Newest
// sessions sort first in the sidebar.
func (s *SessionStore) Register(sess model.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	registry := s.Registry()
	for _, existing := range registry {
		if existing.ID == sess.ID {
			return nil
		}
	}
	registry = append([]model.ChatSession{sess}, registry...)
	return s.SaveRegistry(registry)
}

// Find returns the registry entry for id, if present.
func (s *SessionStore) Find(id string) (model.ChatSession, bool) {
	for _, sess := range s.Registry() {
		if sess.ID == id {
			return sess, true
		}
	}
	return model.ChatSession{}, false
}

// Messages returns the message log for a session. Missing and corrupt logs
// both yield an empty slice; corruption is logged.
func (s *SessionStore) Messages(sessionID string) []model.Message {
	var msgs []model.Message
	err := s.store.Load(messagesKey(sessionID), &msgs)
	switch {
	case err == nil:
		return msgs
	case errors.Is(err, ErrNotFound):
		return nil
	case errors.Is(err, ErrCorrupt):
		log.Warn().Err(err).Str("session", sessionID).Msg("message log unreadable, starting empty")
		return nil
	default:
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to read message log")
		return nil
	}
}

// SaveMessages persists a session's message log. Empty logs are not written;
// a session with no messages has no file.
func (s *SessionStore) SaveMessages(sessionID string, msgs []model.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := s.store.Save(messagesKey(sessionID), msgs); err != nil {
		return fmt.Errorf("failed to save messages for %s: %w", sessionID, err)
	}
	return nil
}

// DeleteMessages removes a session's message log only, leaving the
// registry alone. Used when rolling back a conversation that was never
// registered.
func (s *SessionStore) DeleteMessages(sessionID string) error {
	return s.store.Delete(messagesKey(sessionID))
}

// DeleteSession removes a session's registry entry and message log.
// Deleting an unknown session is a no-op. Other entries are untouched.
func (s *SessionStore) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	registry := s.Registry()
	kept := registry[:0]
	removed := false
	for _, sess := range registry {
		if sess.ID == sessionID {
			removed = true
			continue
		}
		kept = append(kept, sess)
	}

	if removed {
		if err := s.SaveRegistry(kept); err != nil {
			return err
		}
	}

	if err := s.store.Delete(messagesKey(sessionID)); err != nil {
		return err
	}

	if removed {
		log.Info().Str("session", sessionID).Msg("session deleted")
	}
	return nil
}

// =============================================================================
// CHANGE NOTIFICATION
// =============================================================================

// Subscribe registers fn to run after every registry change made through
// this store. External changes are covered by RegistryWatcher.
func (s *SessionStore) Subscribe(fn func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *SessionStore) notify() {
	s.obsMu.Lock()
	fns := make([]func(), len(s.observers))
	copy(fns, s.observers)
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
