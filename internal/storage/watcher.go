// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// =============================================================================
// REGISTRY WATCHER
// =============================================================================

// debounceWindow coalesces the create/write/rename burst an atomic save
// produces into a single notification.
const debounceWindow = 100 * time.Millisecond

// RegistryWatcher reports external changes to the session registry file,
// e.g. a second regchat process deleting a session. The data directory is
// watched rather than the file itself because atomic writes replace the
// inode on every save.
type RegistryWatcher struct {
	watcher *fsnotify.Watcher
	target  string
	changes chan struct{}
	done    chan struct{}
}

// WatchRegistry starts watching the session store's registry file. Callers
// must Close the watcher when done.
func WatchRegistry(sessions *SessionStore) (*RegistryWatcher, error) {
	target := sessions.RegistryPath()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		w.Close()
		return nil, err
	}

	rw := &RegistryWatcher{
		watcher: w,
		target:  target,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go rw.run()
	return rw, nil
}

// Changes delivers one value per (debounced) registry change. The channel
// is closed when the watcher shuts down.
func (rw *RegistryWatcher) Changes() <-chan struct{} {
	return rw.changes
}

// Close stops the watcher.
func (rw *RegistryWatcher) Close() error {
	close(rw.done)
	return rw.watcher.Close()
}

func (rw *RegistryWatcher) run() {
	defer close(rw.changes)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-rw.done:
			return

		case ev, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != rw.target {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceWindow)
			}

		case <-fire:
			timer = nil
			fire = nil
			select {
			case rw.changes <- struct{}{}:
			default:
			}

		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("registry watcher error")
		}
	}
}
