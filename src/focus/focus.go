// Package focus tracks the window that held focus before the launcher's
// own window appeared, so output can be delivered back to it.
package focus

import (
	"sync"

	"spellpaste/src/platform"
)

// Broker owns the single shared previous-window slot. Save must run before
// the tool window is shown, otherwise the tool captures itself.
type Broker struct {
	mu   sync.Mutex
	prev platform.Handle

	// injectable for tests; nil means the real platform calls
	foreground func() platform.Handle
	activate   func(platform.Handle)
}

func NewBroker() *Broker {
	return &Broker{
		foreground: platform.ForegroundWindow,
		activate:   platform.ActivateWindow,
	}
}

// NewBrokerWithHooks builds a broker around injected platform calls.
func NewBrokerWithHooks(foreground func() platform.Handle, activate func(platform.Handle)) *Broker {
	return &Broker{foreground: foreground, activate: activate}
}

// Save captures the current foreground window into the slot, overwriting
// any prior value, and returns the captured handle.
func (b *Broker) Save() platform.Handle {
	h := b.foreground()
	b.mu.Lock()
	b.prev = h
	b.mu.Unlock()
	return h
}

// Restore asks the platform to re-activate the saved window. A zero handle
// means nothing was captured and the call is a no-op. Best-effort either
// way: restoring focus is a UX nicety, never a correctness requirement.
func (b *Broker) Restore() {
	b.mu.Lock()
	h := b.prev
	b.mu.Unlock()
	if h == 0 {
		return
	}
	b.activate(h)
}

// Saved returns the handle currently held in the slot.
func (b *Broker) Saved() platform.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.prev
}
