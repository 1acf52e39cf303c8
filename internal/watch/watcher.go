// Package watch invalidates cached directory scans when the directories
// change on disk. It wraps fsnotify: directories are registered as they are
// visited, and the canonical path affected by each event is reported on a
// channel for the browsing loop to drain.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"idu/internal/log"
)

// Watcher monitors visited directories for changes using fsnotify
type Watcher struct {
	// Channel reporting directories whose cached scans are stale
	invalidated chan string

	// Channel to signal stop
	stopChan chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Lock for running state and the watched set
	mutex sync.Mutex

	// Directories being watched
	watched map[string]struct{}

	// Whether the watcher is running
	running bool
}

// New creates a new directory watcher using fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		invalidated: make(chan string, 32),
		stopChan:    make(chan struct{}),
		fsWatcher:   fsWatcher,
		watched:     make(map[string]struct{}),
	}, nil
}

// Add registers a directory to watch. Adding the same directory twice is a
// no-op.
func (w *Watcher) Add(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}
	w.watched[dir] = struct{}{}
	log.Debugf("watching directory %s", dir)
	return nil
}

// Invalidated returns the channel delivering directories whose cached scans
// should be considered stale.
func (w *Watcher) Invalidated() <-chan string {
	return w.invalidated
}

// Start begins delivering invalidations. Events are mapped to the directory
// containing the changed path; if the report channel is full the event is
// dropped, since a single pending invalidation per directory is enough.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.mutex.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				dir := filepath.Dir(event.Name)
				select {
				case w.invalidated <- dir:
				default:
				}
			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}
				log.Warnf("watcher error: %v", err)
			case <-w.stopChan:
				return
			}
		}
	}()

	return nil
}

// Stop halts event delivery and releases the fsnotify watcher.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopChan)
	w.fsWatcher.Close()
}
