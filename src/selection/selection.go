// Package selection captures the user's current text selection with the
// clipboard-diff technique: snapshot the clipboard, fire a synthetic copy
// at the focused window, wait for the target application to react, and
// compare. No portable OS API reads another application's selection
// directly, so transiently borrowing the clipboard is the only option.
package selection

import (
	"log"
	"sync"
	"time"

	"spellpaste/src/clipboard"
	"spellpaste/src/logutil"
	"spellpaste/src/platform"
)

// Capturer performs clipboard-diff captures and owns the shared
// last-selection slot read by spell invocations.
type Capturer struct {
	// Settle is how long the focused application gets to service the copy
	// gesture before the clipboard is re-read.
	Settle time.Duration

	// injectable for tests; nil means the real implementations
	ReadClipboard func() string
	SendCopy      func()

	mu   sync.Mutex
	last string
}

func NewCapturer(settle time.Duration) *Capturer {
	return &Capturer{
		Settle:        settle,
		ReadClipboard: clipboard.ReadText,
		SendCopy:      platform.SendCopyGesture,
	}
}

// Capture runs the clipboard diff and stores the result in the slot.
// Returns "" when the clipboard did not change (nothing selected, or the
// application was slower than the settle delay). Clipboard failures
// degrade to "" as well; they are never fatal.
func (c *Capturer) Capture() string {
	before := c.ReadClipboard()
	c.SendCopy()
	time.Sleep(c.Settle)
	after := c.ReadClipboard()

	selected := ""
	if after != before {
		selected = after
	}
	log.Printf("Selection: captured %d chars: %s", len(selected), logutil.Truncate(selected, 64))

	c.mu.Lock()
	c.last = selected
	c.mu.Unlock()
	return selected
}

// Last returns the most recently captured selection.
func (c *Capturer) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
