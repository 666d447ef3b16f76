package status

import (
	"sync"
	"time"
)

// IdleText is what the indicator shows when nothing was recently synced
const IdleText = "savesync"

// revertAfter is how long a flashed message stays before reverting to idle
const revertAfter = 5 * time.Second

// ⏱️ Indicator models the transient status indicator: it normally shows the
// idle text, and Flash swaps in a message that reverts automatically after a
// few seconds. Rapid flashes simply restart the revert timer.
type Indicator struct {
	mu       sync.Mutex
	text     string
	timer    *time.Timer
	after    time.Duration
	onChange func(text string)
}

// 🏭 NewIndicator creates an idle indicator. onChange, if non-nil, is called
// on every visible text change (including the automatic revert) and must not
// call back into the indicator.
func NewIndicator(onChange func(text string)) *Indicator {
	return &Indicator{text: IdleText, after: revertAfter, onChange: onChange}
}

// Text returns the currently displayed text
func (i *Indicator) Text() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.text
}

// Flash shows text now and reverts to the idle text after the revert window
func (i *Indicator) Flash(text string) {
	i.mu.Lock()
	i.text = text
	if i.timer == nil {
		i.timer = time.AfterFunc(i.after, i.revert)
	} else {
		i.timer.Reset(i.after)
	}
	cb := i.onChange
	i.mu.Unlock()

	if cb != nil {
		cb(text)
	}
}

// Idle reverts to the idle text immediately and cancels any pending revert
func (i *Indicator) Idle() {
	i.mu.Lock()
	if i.timer != nil {
		i.timer.Stop()
	}
	changed := i.text != IdleText
	i.text = IdleText
	cb := i.onChange
	i.mu.Unlock()

	if changed && cb != nil {
		cb(IdleText)
	}
}

func (i *Indicator) revert() {
	i.mu.Lock()
	changed := i.text != IdleText
	i.text = IdleText
	cb := i.onChange
	i.mu.Unlock()

	if changed && cb != nil {
		cb(IdleText)
	}
}
