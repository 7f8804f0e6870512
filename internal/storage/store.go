// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists regchat state as JSON documents on disk.
//
// The layout mirrors a simple key-value store: each key maps to one JSON
// file under the data directory. All writes go through atomic rename so a
// crash mid-write never leaves a torn document behind.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/regchat-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound indicates the requested key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// ErrCorrupt indicates a persisted document failed to parse. Callers treat
// the value as absent rather than guessing at partial contents.
var ErrCorrupt = errors.New("storage: corrupt document")

// NotFoundError wraps ErrNotFound with the missing key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("storage: key %q not found", e.Key)
}

// Is supports errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CorruptError wraps ErrCorrupt with the offending key and parse error.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("storage: key %q corrupt: %v", e.Key, e.Err)
}

// Is supports errors.Is(err, ErrCorrupt).
func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// =============================================================================
// STORE
// =============================================================================

// Store is a minimal JSON document store keyed by string.
type Store interface {
	// Load unmarshals the document at key into v. Returns an error
	// matching ErrNotFound when the key is absent and ErrCorrupt when the
	// document exists but cannot be parsed.
	Load(key string, v any) error

	// Save marshals v and writes it at key, atomically.
	Save(key string, v any) error

	// Delete removes the document at key. Deleting a missing key is a
	// no-op.
	Delete(key string) error

	// Path returns the on-disk location of key, for change watching.
	Path(key string) string
}

// FileStore implements Store with one JSON file per key.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file backing the given key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// Load implements Store.
func (s *FileStore) Load(key string, v any) error {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{Key: key}
		}
		return fmt.Errorf("failed to read %q: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return &CorruptError{Key: key, Err: err}
	}
	return nil
}

// Save implements Store.
func (s *FileStore) Save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}
	if err := util.AtomicWriteFile(s.Path(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// sanitizeKey maps a key to a safe file name component.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")
	return r.Replace(key)
}
