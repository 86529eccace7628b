//go:build windows

package notification

import "golang.org/x/sys/windows"

const mbOK = 0x00000000
const mbIconWarning = 0x00000030
const mbSetForeground = 0x00010000

func showPopup(title, message string) error {
	_, err := windows.MessageBox(0,
		windows.StringToUTF16Ptr(message),
		windows.StringToUTF16Ptr(title),
		mbOK|mbIconWarning|mbSetForeground)
	return err
}
