package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vigild/vigil/pkg/logger"
)

// subscription routes events under one root to a callback.
type subscription struct {
	root string
	fn   func()
}

// Monitor is the daemon's change-event source. It wraps one fsnotify
// watcher for all projects and dispatches any event under a registered
// root to that root's callback, with no filtering by event kind or
// path pattern.
type Monitor struct {
	log logger.Logger
	fsw *fsnotify.Watcher

	mu   sync.Mutex
	subs []subscription

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewMonitor creates a Monitor and starts its event loop.
func NewMonitor(log logger.Logger) (*Monitor, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fs watcher: %w", err)
	}
	m := &Monitor{
		log:  log,
		fsw:  fsw,
		done: make(chan struct{}),
	}
	go m.loop()
	return m, nil
}

// Watch registers fn for every filesystem event under root,
// recursively. fsnotify watches are per-directory, so the whole subtree
// is added up front; directories created later are picked up by the
// event loop.
func (m *Monitor) Watch(root string, fn func()) error {
	root = filepath.Clean(root)

	var added []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := m.fsw.Add(path); err != nil {
			return err
		}
		added = append(added, path)
		return nil
	})
	if err != nil {
		// unwind the partial registration: no subscription will ever
		// consume events from these directories
		for _, path := range added {
			_ = m.fsw.Remove(path)
		}
		return fmt.Errorf("watching %s: %w", root, err)
	}

	m.mu.Lock()
	m.subs = append(m.subs, subscription{root: root, fn: fn})
	m.mu.Unlock()

	m.log.Info("Observing %s", root)
	return nil
}

// Close stops the event source and waits for the event loop to
// terminate. Idempotent.
func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = m.fsw.Close()
		<-m.done
	})
	return m.closeErr
}

func (m *Monitor) loop() {
	defer close(m.done)
	for {
		select {
		case event, ok := <-m.fsw.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				// Keep the subtree covered when directories appear.
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := m.fsw.Add(event.Name); err != nil {
						m.log.Warning("Failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}
			m.dispatch(event.Name)

		case err, ok := <-m.fsw.Errors:
			if !ok {
				return
			}
			m.log.Warning("Watcher error: %v", err)
		}
	}
}

// dispatch invokes the callback of every subscription whose root
// contains path. Callbacks are collected under the lock and invoked
// outside it.
func (m *Monitor) dispatch(path string) {
	m.mu.Lock()
	var fns []func()
	for _, sub := range m.subs {
		if path == sub.root || strings.HasPrefix(path, sub.root+string(filepath.Separator)) {
			fns = append(fns, sub.fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
