package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "savesync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mappings: []\n"), 0644), "seeding config")

	changed := make(chan struct{}, 1)
	w, err := WatchFile(testContext(t), path, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err, "starting watcher")
	defer w.Close()

	// A write to an unrelated file in the same directory must not notify
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644), "writing unrelated file")
	select {
	case <-changed:
		t.Fatal("unrelated file change should not notify")
	case <-time.After(500 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("mappings: []\n# touched\n"), 0644), "rewriting config")
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config change notification")
	}
}
