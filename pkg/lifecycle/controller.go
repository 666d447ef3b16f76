// Package lifecycle owns savesync's enable/disable state machine. The
// controller is the single mutation entry point for the listener registry
// and the enabled flag: every external event (enable command, disable
// command, configuration change, folder churn) is serialized through one
// mutex, so no handler ever observes a partially mutated registry.
package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/savesync/pkg/config"
	"github.com/walteh/savesync/pkg/pathmatch"
	"github.com/walteh/savesync/pkg/registry"
	"github.com/walteh/savesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📊 State is the controller's lifecycle state
type State int

const (
	Disabled State = iota // initial
	Enabled
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case Enabled:
		return "enabled"
	default:
		return "disabled"
	}
}

// 🔌 MappingSource provides the current mapping list
type MappingSource interface {
	Mappings(ctx context.Context) []config.Mapping
}

// 🗂️ FolderSource provides the currently open workspace folders
type FolderSource interface {
	Open() []string
}

// 🏗️ ListenerFactory creates the live save subscription for one mapping.
// The returned handle is exclusively owned by the listener registry.
type ListenerFactory func(ctx context.Context, m config.Mapping) (registry.Disposable, error)

// 🔧 Options contains the controller's collaborators
type Options struct {
	Mappings MappingSource
	Folders  FolderSource
	Listen   ListenerFactory
	Reporter status.Reporter
}

// 🎮 Controller drives the enable/disable lifecycle
type Controller struct {
	mu       sync.Mutex
	state    State
	reg      *registry.Registry
	mappings MappingSource
	folders  FolderSource
	listen   ListenerFactory
	reporter status.Reporter
}

// 🏭 New creates a controller in the Disabled state
func New(opts Options) (*Controller, error) {
	if opts.Mappings == nil {
		return nil, errors.Errorf("mapping source is required")
	}
	if opts.Folders == nil {
		return nil, errors.Errorf("folder source is required")
	}
	if opts.Listen == nil {
		return nil, errors.Errorf("listener factory is required")
	}
	if opts.Reporter == nil {
		return nil, errors.Errorf("reporter is required")
	}
	return &Controller{
		reg:      registry.New(),
		mappings: opts.Mappings,
		folders:  opts.Folders,
		listen:   opts.Listen,
		reporter: opts.Reporter,
	}, nil
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ListenerCount returns the number of live listeners
func (c *Controller) ListenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.Len()
}

// ▶️ Enable switches saving-listening on. A second call is a no-op. With no
// open workspace folders the enable is aborted and the controller stays
// disabled. Folders without a matching mapping get a warning but do not
// abort the others.
func (c *Controller) Enable(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enableLocked(ctx)
}

// ⏹️ Disable switches save-listening off, disposing every listener. A second
// call is a no-op.
func (c *Controller) Disable(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disableLocked(ctx)
}

// 🔁 Reload handles a configuration change: a full disable/enable cycle, no
// incremental diff of mappings.
func (c *Controller) Reload(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	zerolog.Ctx(ctx).Info().Msg("configuration changed, reloading")
	c.disableLocked(ctx)
	c.enableLocked(ctx)
}

// 🔀 FoldersChanged handles one batched workspace folder change. Removed
// folders always tear their listeners down; added folders are registered
// only while enabled, preserving the invariant that the registry is empty
// when disabled.
func (c *Controller) FoldersChanged(ctx context.Context, added, removed []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, folder := range removed {
		c.reg.RemoveByFolder(ctx, folder)
	}

	if len(added) == 0 {
		return
	}
	if c.state != Enabled {
		zerolog.Ctx(ctx).Debug().Strs("folders", added).Msg("ignoring folder additions while disabled")
		return
	}
	mappings := c.mappings.Mappings(ctx)
	for _, folder := range added {
		c.registerFolder(ctx, folder, mappings)
	}
}

func (c *Controller) enableLocked(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	if c.state == Enabled {
		logger.Info().Msg("savesync already enabled")
		return
	}

	folders := c.folders.Open()
	if len(folders) == 0 {
		logger.Warn().Msg("cannot enable: no workspace folders are open")
		c.reporter.Warn(ctx, "savesync: no workspace folders are open")
		return
	}

	mappings := c.mappings.Mappings(ctx)
	for _, folder := range folders {
		c.registerFolder(ctx, folder, mappings)
	}

	c.state = Enabled
	c.reporter.Activated(ctx)
}

func (c *Controller) disableLocked(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	if c.state == Disabled {
		logger.Info().Msg("savesync already disabled")
		return
	}

	c.reg.Clear(ctx)
	c.state = Disabled
	c.reporter.Deactivated(ctx)
}

// registerFolder registers one listener per mapping whose source is equal to
// or nested under folder
func (c *Controller) registerFolder(ctx context.Context, folder string, mappings []config.Mapping) {
	logger := zerolog.Ctx(ctx)

	matched := 0
	for _, m := range mappings {
		if !pathmatch.IsRootOrNested(m.Source, folder) {
			continue
		}
		handle, err := c.listen(ctx, m)
		if err != nil {
			logger.Error().Err(err).Str("source", m.Source).Msg("registering save listener")
			c.reporter.Error(ctx, fmt.Sprintf("savesync: cannot watch %s", m.Source), err)
			continue
		}
		c.reg.Add(m.Source, handle)
		matched++
		logger.Debug().Str("source", m.Source).Str("folder", folder).Msg("save listener registered")
	}

	if matched == 0 {
		logger.Warn().Str("folder", folder).Msg("no mappings for folder")
		c.reporter.Warn(ctx, fmt.Sprintf("savesync: no mappings configured for %s", folder))
	}
}
