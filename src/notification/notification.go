package notification

import "log"

// ShowError displays a transient, non-blocking error popup. Used for the
// absorbed failure class (busy resident, spell not found, spawn failure):
// the user is told, the pipeline is not aborted further than it already was.
func ShowError(title, message string) {
	log.Printf("Notification: %s: %s", title, message)
	go func() {
		if err := showPopup(title, message); err != nil {
			log.Printf("Notification: popup failed: %v", err)
		}
	}()
}
