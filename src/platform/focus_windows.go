//go:build windows

package platform

import "golang.org/x/sys/windows"

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
)

// ForegroundWindow returns the HWND of the current foreground window, or 0.
func ForegroundWindow() Handle {
	h, _, _ := procGetForegroundWindow.Call()
	return Handle(h)
}

// ActivateWindow brings a previously captured window back to the
// foreground. Best-effort: the call fails silently when the window is gone
// or the shell refuses the focus change.
func ActivateWindow(h Handle) {
	if h == 0 {
		return
	}
	_, _, _ = procSetForegroundWindow.Call(uintptr(h))
}
