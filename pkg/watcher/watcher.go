// Package watcher is savesync's save-event source. A Watcher observes one
// directory tree through fsnotify and reports each settled file write as a
// single save event with the file's absolute path. Editors tend to emit a
// burst of events per save (write, chmod, rename-replace), so events are
// debounced per path before delivery.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// saveDebounce is how long a path must stay quiet before a save is reported
const saveDebounce = 100 * time.Millisecond

// 👀 Watcher watches one root directory recursively for file saves.
// Close satisfies the registry's Disposable contract: after Close returns,
// onSave is never invoked again.
type Watcher struct {
	root string
	fsw  *fsnotify.Watcher
	done chan struct{}

	mu      sync.Mutex
	closed  bool
	pending map[string]*time.Timer
}

// 🏭 New starts watching root and invokes onSave (from watcher-owned
// goroutines) with the absolute path of each saved file.
func New(ctx context.Context, root string, onSave func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		root:    root,
		fsw:     fsw,
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}

	// Watch the root and every directory beneath it
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(p)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, errors.Errorf("watching %s: %w", root, err)
	}

	go w.run(ctx, onSave)
	return w, nil
}

// Root returns the watched root directory
func (w *Watcher) Root() string {
	return w.root
}

func (w *Watcher) run(ctx context.Context, onSave func(path string)) {
	defer close(w.done)
	logger := zerolog.Ctx(ctx)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				// New directories join the watch; new files count as saves
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.fsw.Add(ev.Name); err != nil {
						logger.Warn().Err(err).Str("dir", ev.Name).Msg("watching new directory")
					}
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if fi, err := os.Stat(ev.Name); err != nil || fi.IsDir() {
				continue
			}
			w.debounce(ev.Name, onSave)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Str("root", w.root).Msg("watcher error")
		}
	}
}

// debounce coalesces an event burst into one save per path
func (w *Watcher) debounce(path string, onSave func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(saveDebounce)
		return
	}
	// onSave runs under the watcher lock so Close can guarantee no delivery
	// starts after it returns. onSave must not call back into the watcher.
	w.pending[path] = time.AfterFunc(saveDebounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		delete(w.pending, path)
		onSave(path)
	})
}

// Close stops watching and cancels pending save deliveries. It blocks until
// the event loop has exited; no onSave call is made after it returns.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}
