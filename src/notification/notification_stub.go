//go:build !windows

package notification

import "log"

func showPopup(title, message string) error {
	log.Printf("%s: %s", title, message)
	return nil
}
