package lifecycle_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/savesync/pkg/config"
	"github.com/walteh/savesync/pkg/lifecycle"
	"github.com/walteh/savesync/pkg/registry"
	"github.com/walteh/savesync/pkg/syncer"
	"github.com/walteh/savesync/pkg/watcher"
	"github.com/walteh/savesync/pkg/workspace"
)

// TestSaveToMirrorEndToEnd wires the real store, workspace, watcher, engine
// and copier through the controller and drives it with actual file saves.
func TestSaveToMirrorEndToEnd(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "project", "src")
	dst := filepath.Join(dir, "mirror")
	require.NoError(t, os.MkdirAll(src, 0755), "creating source tree")

	cfgPath := filepath.Join(dir, "savesync.yaml")
	cfg := fmt.Sprintf(`
workspace:
  folders:
    - %s
mappings:
  - source: %s
    destination: %s
`, filepath.Join(dir, "project"), src, dst)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644), "writing config")

	store := config.NewStore(cfgPath)
	ws := workspace.New(store.Folders(ctx))
	reporter := &fakeReporter{}
	engine := syncer.New(syncer.OSCopier{}, reporter)

	listen := func(ctx context.Context, m config.Mapping) (registry.Disposable, error) {
		return watcher.New(ctx, m.Source, func(path string) {
			engine.Sync(ctx, m, path)
		})
	}

	ctrl, err := lifecycle.New(lifecycle.Options{
		Mappings: store,
		Folders:  ws,
		Listen:   listen,
		Reporter: reporter,
	})
	require.NoError(t, err, "creating controller")

	ctrl.Enable(ctx)
	require.Equal(t, lifecycle.Enabled, ctrl.State(), "controller enabled")
	require.Equal(t, 1, ctrl.ListenerCount(), "mapping registered")

	saved := filepath.Join(src, "a.txt")
	require.NoError(t, os.WriteFile(saved, []byte("hello"), 0644), "saving tracked file")

	mirrored := filepath.Join(dst, "a.txt")
	require.Eventually(t, func() bool {
		content, err := os.ReadFile(mirrored)
		return err == nil && string(content) == "hello"
	}, 10*time.Second, 50*time.Millisecond, "save mirrored to destination")

	// After disable, further saves must not be mirrored
	ctrl.Disable(ctx)
	engine.Drain()
	require.Equal(t, 0, ctrl.ListenerCount(), "registry empty after disable")

	require.NoError(t, os.WriteFile(saved, []byte("after disable"), 0644), "saving while disabled")
	time.Sleep(500 * time.Millisecond)
	engine.Drain()

	content, err := os.ReadFile(mirrored)
	require.NoError(t, err, "mirror still present")
	assert.Equal(t, "hello", string(content), "no mirroring while disabled")
}
