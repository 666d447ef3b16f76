package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// debounce window for config change notifications; editors typically emit a
// burst of writes/renames for a single save
const watchDebounce = 250 * time.Millisecond

// 👀 Watcher emits a notification whenever the config file changes on disk.
// It watches the containing directory rather than the file itself, because
// most editors replace files via rename and that would drop a direct watch.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// 🏭 WatchFile starts watching the config file at path and invokes onChange
// (from the watcher goroutine) after each settled burst of modifications.
func WatchFile(ctx context.Context, path string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, errors.Errorf("watching config directory %s: %w", dir, err)
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	go w.run(ctx, filepath.Base(path), onChange)
	return w, nil
}

func (w *Watcher) run(ctx context.Context, name string, onChange func()) {
	defer close(w.done)
	logger := zerolog.Ctx(ctx)

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			logger.Debug().Str("event", ev.String()).Msg("config file changed")
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			onChange()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
