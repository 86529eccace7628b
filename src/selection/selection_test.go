package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testCapturer(reads []string, copied *bool) *Capturer {
	i := 0
	return &Capturer{
		Settle: time.Millisecond,
		ReadClipboard: func() string {
			r := reads[i]
			if i < len(reads)-1 {
				i++
			}
			return r
		},
		SendCopy: func() {
			if copied != nil {
				*copied = true
			}
		},
	}
}

func TestCaptureDetectsChangedClipboard(t *testing.T) {
	copied := false
	c := testCapturer([]string{"old contents", "selected text"}, &copied)

	got := c.Capture()
	assert.Equal(t, "selected text", got)
	assert.True(t, copied, "copy gesture must be sent")
	assert.Equal(t, "selected text", c.Last())
}

func TestCaptureUnchangedClipboardMeansNoSelection(t *testing.T) {
	c := testCapturer([]string{"same", "same"}, nil)

	assert.Equal(t, "", c.Capture())
	assert.Equal(t, "", c.Last())
}

func TestCaptureOverwritesLastSlot(t *testing.T) {
	c := testCapturer([]string{"a", "first pick"}, nil)
	c.Capture()
	assert.Equal(t, "first pick", c.Last())

	// Second capture sees no diff and clears the slot.
	c.ReadClipboard = func() string { return "steady" }
	c.Capture()
	assert.Equal(t, "", c.Last())
}
