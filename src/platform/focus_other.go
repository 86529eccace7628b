//go:build !windows

package platform

import "github.com/go-vgo/robotgo"

// ForegroundWindow returns the pid of the frontmost application, or 0.
func ForegroundWindow() Handle {
	return Handle(robotgo.GetPid())
}

// ActivateWindow re-activates the application identified by a previously
// captured pid. Best-effort: exited processes are ignored.
func ActivateWindow(h Handle) {
	if h == 0 {
		return
	}
	robotgo.ActivePid(int32(h))
}
