// Package syncer is savesync's sync engine: given a saved file and the
// mapping whose listener fired, it resolves the set of destination paths and
// dispatches one copy per destination. Copies are asynchronous; the save
// handler never waits on them.
package syncer

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/savesync/pkg/config"
	"github.com/walteh/savesync/pkg/pathmatch"
	"github.com/walteh/savesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎯 ResolveDestinations computes the destination paths a save of savedFile
// should be mirrored to under mapping m. A file outside m.Source yields
// nothing (this is the common case, not an error). Inactive destinations are
// skipped; order is preserved and duplicates are not collapsed.
func ResolveDestinations(m config.Mapping, savedFile string) ([]string, error) {
	if !pathmatch.HasRootPrefix(savedFile, m.Source) {
		return nil, nil
	}

	dests := make([]string, 0, len(m.Destinations))
	for _, d := range m.Destinations {
		if !d.Active {
			continue
		}
		out, err := pathmatch.RewritePath(savedFile, m.Source, d.Path)
		if err != nil {
			return nil, errors.Errorf("rewriting %s under %s: %w", savedFile, m.Source, err)
		}
		dests = append(dests, out)
	}
	return dests, nil
}

// ⚙️ Engine dispatches copies and reports their outcomes
type Engine struct {
	copier   Copier
	reporter status.Reporter

	// inflight tracks dispatched copies so shutdown can drain them
	inflight sync.WaitGroup
}

// 🏭 New creates a sync engine over the given copy collaborator
func New(copier Copier, reporter status.Reporter) *Engine {
	return &Engine{copier: copier, reporter: reporter}
}

// 🔄 Sync handles one save event under one mapping. It resolves destinations
// and dispatches one asynchronous copy per destination; completions of rapid
// successive saves may overlap with no ordering guarantee. Failures are
// terminal per destination: logged, surfaced, never retried.
func (e *Engine) Sync(ctx context.Context, m config.Mapping, savedFile string) {
	logger := zerolog.Ctx(ctx)

	if ignored, pattern := isIgnored(m, savedFile); ignored {
		logger.Debug().Str("file", savedFile).Str("pattern", pattern).Msg("save ignored by pattern")
		return
	}

	dests, err := ResolveDestinations(m, savedFile)
	if err != nil {
		// The listener guard should make this unreachable; skip and continue
		logger.Warn().Err(err).Str("file", savedFile).Msg("cannot resolve destinations")
		return
	}
	if len(dests) == 0 {
		logger.Debug().Str("file", savedFile).Str("source", m.Source).Msg("no destinations for save")
		return
	}

	for _, dest := range dests {
		e.dispatch(ctx, savedFile, dest)
	}
}

func (e *Engine) dispatch(ctx context.Context, src, dest string) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		if err := e.copier.Copy(ctx, src, dest); err != nil {
			e.reporter.SyncFailed(ctx, src, dest, err)
			return
		}
		e.reporter.Synced(ctx, src, dest)
	}()
}

// Drain blocks until every dispatched copy has completed or failed
func (e *Engine) Drain() {
	e.inflight.Wait()
}

// isIgnored reports whether the saved file matches one of the mapping's
// ignore globs, evaluated against the path relative to the mapping source
func isIgnored(m config.Mapping, savedFile string) (bool, string) {
	if len(m.Ignore) == 0 {
		return false, ""
	}
	rel, err := pathmatch.RewritePath(savedFile, m.Source, "")
	if err != nil {
		return false, ""
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range m.Ignore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true, pattern
		}
	}
	return false, ""
}
