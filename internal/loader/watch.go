// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     loader
// Description: Hot-reload of manifest directories via fsnotify
// Author:      Mike Stoffels
// Created:     2025-03-12
// License:     MIT
// ============================================================================

package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	dlog "github.com/msto63/dcmd/foundation/core/log"
	"github.com/msto63/dcmd/pkg/core/logging"
)

// DefaultDebounce collapses bursts of editor writes into one reload
const DefaultDebounce = 300 * time.Millisecond

// ReloadFunc is called after manifest files changed
type ReloadFunc func(ctx context.Context) error

// Watcher watches the directory tree of a manifest source on the OS file
// system and calls reload once changes settle
type Watcher struct {
	mu       sync.Mutex
	dir      string
	debounce time.Duration
	reload   ReloadFunc
	watcher  *fsnotify.Watcher
	logger   *logging.Logger
	stopCh   chan struct{}
	done     chan struct{}
	running  bool
}

// NewWatcher creates a watcher for the manifests named by source
func NewWatcher(source string, reload ReloadFunc, logger *dlog.Logger) *Watcher {
	base, _ := doublestar.SplitPattern(filepath.ToSlash(source))
	return &Watcher{
		dir:      filepath.FromSlash(base),
		debounce: DefaultDebounce,
		reload:   reload,
		logger:   logging.Wrap(logger, "watcher"),
	}
}

// SetDebounce overrides the quiet period before a reload
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Dir returns the watched root directory
func (w *Watcher) Dir() string {
	return w.dir
}

// Start begins watching. It returns once the watches are in place.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	err = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.watcher = watcher
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true
	w.logger.Info("Started watching for manifest changes", "dir", w.dir)

	go w.watchLoop(ctx)
	return nil
}

// Stop ends watching and waits for the loop to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	done := w.done
	w.mu.Unlock()

	<-done
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer func() {
		w.watcher.Close()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.done)
	}()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping manifest watcher (context cancelled)")
			return

		case <-w.stopCh:
			w.logger.Info("Stopping manifest watcher (stop signal)")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Manifest changed", "file", filepath.Base(event.Name), "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.reload(ctx); err != nil {
				w.logger.Error("Manifest reload failed", "dir", w.dir, "error", err)
				continue
			}
			w.logger.Info("Manifests reloaded", "dir", w.dir)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

// relevant filters events down to manifest changes. New directories are
// added to the watch so recursive patterns keep working.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("Cannot watch new directory", "dir", event.Name, "error", err)
			}
			return false
		}
	}
	if !isManifestFile(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
