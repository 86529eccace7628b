// Package platform isolates the OS capabilities the launcher depends on:
// synthetic keystrokes and foreground-window save/activate. Per-OS focus
// implementations live in the focus_*.go files; everything else is
// portable through robotgo.
package platform

import (
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Handle identifies a previously focused window or application. The zero
// value means "no previous window". On Windows it is an HWND; elsewhere a
// process id.
type Handle uintptr

// TypeText injects text as synthetic keystrokes into whatever window holds
// keyboard focus. Best-effort: injection failures are not recoverable and
// are ignored.
func TypeText(text string) {
	robotgo.TypeStr(text)
}

// SendCopyGesture presses the native copy accelerator (Cmd+C / Ctrl+C).
func SendCopyGesture() {
	robotgo.KeyTap("c", accelModifier())
}

// SendPasteGesture presses the native paste accelerator (Cmd+V / Ctrl+V).
func SendPasteGesture() {
	robotgo.KeyTap("v", accelModifier())
}

func accelModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}
