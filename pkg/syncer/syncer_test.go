package syncer_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/savesync/pkg/config"
	"github.com/walteh/savesync/pkg/syncer"
	"gitlab.com/tozd/go/errors"
)

// recordingCopier records copy calls and optionally fails specific targets
type recordingCopier struct {
	mu    sync.Mutex
	calls [][2]string
	fail  map[string]error
}

func (c *recordingCopier) Copy(ctx context.Context, src, dest string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, [2]string{src, dest})
	if err, ok := c.fail[dest]; ok {
		return err
	}
	return nil
}

func (c *recordingCopier) snapshot() [][2]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][2]string(nil), c.calls...)
}

// recordingReporter records outcome notifications
type recordingReporter struct {
	mu       sync.Mutex
	synced   []string
	failed   []string
	warnings []string
}

func (r *recordingReporter) Activated(ctx context.Context)   {}
func (r *recordingReporter) Deactivated(ctx context.Context) {}

func (r *recordingReporter) Synced(ctx context.Context, file, dest string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced = append(r.synced, dest)
}

func (r *recordingReporter) SyncFailed(ctx context.Context, file, dest string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, dest)
}

func (r *recordingReporter) Info(ctx context.Context, msg string) {}

func (r *recordingReporter) Warn(ctx context.Context, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

func (r *recordingReporter) Error(ctx context.Context, msg string, err error) {}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestResolveDestinations(t *testing.T) {
	tests := []struct {
		name      string
		mapping   config.Mapping
		savedFile string
		want      []string
	}{
		{
			name: "single_destination",
			mapping: config.Mapping{
				Source:       "/src",
				Destinations: config.DestinationSet{{Path: "/dst", Active: true}},
			},
			savedFile: "/src/x.txt",
			want:      []string{"/dst/x.txt"},
		},
		{
			name: "conditional_fanout_skips_inactive",
			mapping: config.Mapping{
				Source: "/src",
				Destinations: config.DestinationSet{
					{Path: "/d1", Active: true},
					{Path: "/d2", Name: "staging", Active: false},
					{Path: "/d3", Active: true},
				},
			},
			savedFile: "/src/a/b.txt",
			want:      []string{"/d1/a/b.txt", "/d3/a/b.txt"},
		},
		{
			name: "file_outside_source_yields_nothing",
			mapping: config.Mapping{
				Source:       "/src",
				Destinations: config.DestinationSet{{Path: "/dst", Active: true}},
			},
			savedFile: "/other/x.txt",
			want:      nil,
		},
		{
			name: "shared_prefix_is_not_a_match",
			mapping: config.Mapping{
				Source:       "/src",
				Destinations: config.DestinationSet{{Path: "/dst", Active: true}},
			},
			savedFile: "/srcfiles/x.txt",
			want:      nil,
		},
		{
			name: "case_insensitive_source_match",
			mapping: config.Mapping{
				Source:       "/Src",
				Destinations: config.DestinationSet{{Path: "/dst", Active: true}},
			},
			savedFile: "/src/x.txt",
			want:      []string{"/dst/x.txt"},
		},
		{
			name: "duplicate_destinations_not_collapsed",
			mapping: config.Mapping{
				Source: "/src",
				Destinations: config.DestinationSet{
					{Path: "/dst", Active: true},
					{Path: "/dst", Active: true},
				},
			},
			savedFile: "/src/x.txt",
			want:      []string{"/dst/x.txt", "/dst/x.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := syncer.ResolveDestinations(tt.mapping, tt.savedFile)
			require.NoError(t, err, "resolving destinations")
			assert.Equal(t, tt.want, got, "resolved destinations")
		})
	}
}

func TestSyncDispatchesOneCopyPerDestination(t *testing.T) {
	ctx := testContext(t)
	copier := &recordingCopier{}
	reporter := &recordingReporter{}
	engine := syncer.New(copier, reporter)

	m := config.Mapping{
		Source: "/src",
		Destinations: config.DestinationSet{
			{Path: "/d1", Active: true},
			{Path: "/d2", Active: false},
			{Path: "/d3", Active: true},
		},
	}

	engine.Sync(ctx, m, "/src/x.txt")
	engine.Drain()

	calls := copier.snapshot()
	require.Len(t, calls, 2, "exactly two copy calls")
	got := map[string]bool{}
	for _, call := range calls {
		assert.Equal(t, "/src/x.txt", call[0], "copy source")
		got[call[1]] = true
	}
	assert.True(t, got["/d1/x.txt"], "active destination d1 copied")
	assert.True(t, got["/d3/x.txt"], "active destination d3 copied")
	assert.False(t, got["/d2/x.txt"], "inactive destination d2 never invoked")

	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	assert.Len(t, reporter.synced, 2, "one success notification per copy")
	assert.Empty(t, reporter.failed, "no failures")
}

func TestSyncOutsideMappingIsSilentlyIgnored(t *testing.T) {
	ctx := testContext(t)
	copier := &recordingCopier{}
	reporter := &recordingReporter{}
	engine := syncer.New(copier, reporter)

	m := config.Mapping{
		Source:       "/src",
		Destinations: config.DestinationSet{{Path: "/dst", Active: true}},
	}

	engine.Sync(ctx, m, "/elsewhere/x.txt")
	engine.Drain()

	assert.Empty(t, copier.snapshot(), "no copy calls for unmapped file")
}

func TestSyncFailureIsTerminalPerDestination(t *testing.T) {
	ctx := testContext(t)
	copier := &recordingCopier{
		fail: map[string]error{"/d1/x.txt": errors.New("disk full")},
	}
	reporter := &recordingReporter{}
	engine := syncer.New(copier, reporter)

	m := config.Mapping{
		Source: "/src",
		Destinations: config.DestinationSet{
			{Path: "/d1", Active: true},
			{Path: "/d2", Active: true},
		},
	}

	engine.Sync(ctx, m, "/src/x.txt")
	engine.Drain()

	assert.Len(t, copier.snapshot(), 2, "failure does not stop the other destination")

	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	assert.Equal(t, []string{"/d1/x.txt"}, reporter.failed, "failed destination surfaced")
	assert.Equal(t, []string{"/d2/x.txt"}, reporter.synced, "other destination still synced")
}

func TestSyncHonorsIgnorePatterns(t *testing.T) {
	ctx := testContext(t)
	copier := &recordingCopier{}
	reporter := &recordingReporter{}
	engine := syncer.New(copier, reporter)

	m := config.Mapping{
		Source:       "/src",
		Destinations: config.DestinationSet{{Path: "/dst", Active: true}},
		Ignore:       []string{"**/*.tmp"},
	}

	engine.Sync(ctx, m, "/src/build/cache.tmp")
	engine.Sync(ctx, m, "/src/build/keep.txt")
	engine.Drain()

	calls := copier.snapshot()
	require.Len(t, calls, 1, "ignored file produces no copy")
	assert.Equal(t, "/dst/build/keep.txt", calls[0][1], "non-ignored file copied")
}

func TestOSCopier(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "a.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755), "creating source dir")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0644), "writing source")

	dest := filepath.Join(dir, "dst", "deep", "a.txt")
	copier := syncer.OSCopier{}
	ctx := testContext(t)

	require.NoError(t, copier.Copy(ctx, src, dest), "copy creates intermediate directories")
	content, err := os.ReadFile(dest)
	require.NoError(t, err, "reading destination")
	assert.Equal(t, "hello", string(content), "content copied")

	// Overwrite semantics: the destination is silently replaced
	require.NoError(t, os.WriteFile(src, []byte("updated"), 0644), "updating source")
	require.NoError(t, copier.Copy(ctx, src, dest), "copy overwrites")
	content, err = os.ReadFile(dest)
	require.NoError(t, err, "re-reading destination")
	assert.Equal(t, "updated", string(content), "destination replaced")

	// Missing source is a descriptive error
	err = copier.Copy(ctx, filepath.Join(dir, "missing.txt"), dest)
	require.Error(t, err, "missing source fails")
	assert.Contains(t, err.Error(), "opening source file", "error is wrapped with context")
}
