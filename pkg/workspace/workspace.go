// Package workspace tracks the root folders savesync watches. Folders come
// from configuration, but their availability is a runtime property: a root
// on a network volume comes and goes with the mount. The workspace polls for
// availability and reports batched added/removed changes, which is where the
// lifecycle controller's incremental listener updates hang off.
package workspace

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// 🗂️ Workspace holds the configured folder set and which of them are
// currently present on disk
type Workspace struct {
	mu      sync.Mutex
	folders []string
	present map[string]bool
}

// 🏭 New creates a workspace over the configured folders. Presence is
// established immediately; the initial state produces no change events.
func New(folders []string) *Workspace {
	w := &Workspace{present: make(map[string]bool)}
	w.SetFolders(folders)
	return w
}

// SetFolders replaces the configured folder list and re-baselines presence.
// Used on configuration reload, which never produces incremental events.
func (w *Workspace) SetFolders(folders []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.folders = append([]string(nil), folders...)
	w.present = make(map[string]bool, len(folders))
	for _, f := range folders {
		w.present[f] = dirExists(f)
	}
}

// 📋 Open returns the currently available folders, in configuration order
func (w *Workspace) Open() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.folders))
	for _, f := range w.folders {
		if w.present[f] {
			out = append(out, f)
		}
	}
	return out
}

// 🔄 Refresh re-checks availability of every configured folder and returns
// the batched changes since the last check
func (w *Workspace) Refresh() (added, removed []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range w.folders {
		now := dirExists(f)
		was := w.present[f]
		switch {
		case now && !was:
			added = append(added, f)
		case !now && was:
			removed = append(removed, f)
		}
		w.present[f] = now
	}
	return added, removed
}

func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// 👀 Monitor polls Refresh on an interval and delivers non-empty change
// batches to onChange from its own goroutine
type Monitor struct {
	stop chan struct{}
	done chan struct{}
}

// 🏭 Watch starts availability polling on w
func Watch(ctx context.Context, w *Workspace, interval time.Duration, onChange func(added, removed []string)) *Monitor {
	m := &Monitor{stop: make(chan struct{}), done: make(chan struct{})}
	logger := zerolog.Ctx(ctx)

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				added, removed := w.Refresh()
				if len(added) == 0 && len(removed) == 0 {
					continue
				}
				logger.Debug().Strs("added", added).Strs("removed", removed).Msg("workspace folders changed")
				onChange(added, removed)
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return m
}

// Close stops the monitor and waits for its goroutine to exit
func (m *Monitor) Close() error {
	close(m.stop)
	<-m.done
	return nil
}
