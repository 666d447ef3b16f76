package status

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicatorFlashAndRevert(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	ind := NewIndicator(func(text string) {
		mu.Lock()
		seen = append(seen, text)
		mu.Unlock()
	})
	ind.after = 50 * time.Millisecond

	assert.Equal(t, IdleText, ind.Text(), "starts idle")

	ind.Flash("synced to /mnt/a")
	assert.Equal(t, "synced to /mnt/a", ind.Text(), "flash shows immediately")

	require.Eventually(t, func() bool {
		return ind.Text() == IdleText
	}, 2*time.Second, 10*time.Millisecond, "indicator reverts to idle")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"synced to /mnt/a", IdleText}, seen, "change callback fired for flash and revert")
}

func TestIndicatorRapidFlashesRestartTimer(t *testing.T) {
	ind := NewIndicator(nil)
	ind.after = 80 * time.Millisecond

	ind.Flash("synced to /mnt/a")
	time.Sleep(40 * time.Millisecond)
	ind.Flash("synced to /mnt/b")
	time.Sleep(60 * time.Millisecond)

	// First timer would have fired by now; the second flash restarted it
	assert.Equal(t, "synced to /mnt/b", ind.Text(), "latest flash still visible")

	require.Eventually(t, func() bool {
		return ind.Text() == IdleText
	}, 2*time.Second, 10*time.Millisecond, "indicator reverts after the restarted window")
}

func TestIndicatorIdleCancelsPendingRevert(t *testing.T) {
	ind := NewIndicator(nil)
	ind.after = 50 * time.Millisecond

	ind.Flash("synced to /mnt/a")
	ind.Idle()
	assert.Equal(t, IdleText, ind.Text(), "idle reverts immediately")
}
