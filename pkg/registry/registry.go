// Package registry tracks the live save-event subscriptions savesync holds,
// one per matched mapping. The registry exclusively owns every handle it is
// given: a handle is always disposed before its entry is dropped, so a
// removed listener can never fire again.
package registry

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/savesync/pkg/pathmatch"
)

// 🔌 Disposable is a live subscription handle owned by the registry
type Disposable interface {
	Close() error
}

// 🎧 Listener pairs a mapping's source root with its subscription handle.
// Root is the mapping's source directory, not the workspace folder it was
// matched against.
type Listener struct {
	Root   string
	handle Disposable
}

// 📒 Registry holds the ordered set of active listeners. It is not
// self-synchronizing: all mutation happens on the controller's single event
// path, which serializes access.
type Registry struct {
	listeners []Listener
}

// 🏭 New creates an empty registry
func New() *Registry {
	return &Registry{}
}

// Add appends a listener. There is no de-duplication: registering the same
// root twice yields two independent entries, both of which fire on save.
func (r *Registry) Add(root string, handle Disposable) {
	r.listeners = append(r.listeners, Listener{Root: root, handle: handle})
}

// Len returns the number of live listeners
func (r *Registry) Len() int {
	return len(r.listeners)
}

// Roots returns the roots of all live listeners, in registration order
func (r *Registry) Roots() []string {
	roots := make([]string, len(r.listeners))
	for i, l := range r.listeners {
		roots[i] = l.Root
	}
	return roots
}

// 🗑️ RemoveByFolder disposes and removes every listener whose root is equal
// to or nested under folder, in the order they were added. Listeners rooted
// in sibling folders are untouched.
func (r *Registry) RemoveByFolder(ctx context.Context, folder string) {
	logger := zerolog.Ctx(ctx)

	kept := r.listeners[:0]
	for _, l := range r.listeners {
		if !pathmatch.IsRootOrNested(l.Root, folder) {
			kept = append(kept, l)
			continue
		}
		if err := l.handle.Close(); err != nil {
			logger.Warn().Err(err).Str("root", l.Root).Msg("disposing listener")
		}
		logger.Debug().Str("root", l.Root).Str("folder", folder).Msg("listener removed")
	}
	r.listeners = kept
}

// 🧹 Clear disposes and removes every listener; used on full disable
func (r *Registry) Clear(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	for _, l := range r.listeners {
		if err := l.handle.Close(); err != nil {
			logger.Warn().Err(err).Str("root", l.Root).Msg("disposing listener")
		}
	}
	r.listeners = nil
}
