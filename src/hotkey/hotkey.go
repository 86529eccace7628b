package hotkey

import (
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen registers a global hotkey combination such as "Ctrl+Space" and
// invokes callback each time every key in the combination is down
// together. The callback runs on the hook goroutine; it should only post
// into the event loop.
func Listen(combo string, callback func()) {
	keys := parseCombo(combo)

	type keyState struct {
		name     string
		rawcodes []uint16
		pressed  bool
	}

	var states []keyState
	for _, name := range keys {
		codes := rawcodesFor(name)
		if len(codes) == 0 {
			log.Printf("Hotkey: cannot map key %q, combo %q may not work", name, combo)
			continue
		}
		states = append(states, keyState{name: name, rawcodes: codes})
	}
	if len(states) == 0 {
		log.Printf("Hotkey: no valid keys in %q", combo)
		return
	}

	log.Printf("Hotkey: listening for %s", combo)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Hotkey: panic in hook goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("Hotkey: gohook.Start returned nil channel")
			return
		}

		var mu sync.Mutex
		match := func(raw uint16) int {
			for i := range states {
				for _, code := range states[i].rawcodes {
					if raw == code {
						return i
					}
				}
			}
			return -1
		}

		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				mu.Lock()
				if i := match(ev.Rawcode); i >= 0 {
					states[i].pressed = true
				}
				all := true
				for i := range states {
					if !states[i].pressed {
						all = false
						break
					}
				}
				if all {
					for i := range states {
						states[i].pressed = false
					}
					mu.Unlock()
					log.Printf("Hotkey: %s activated", combo)
					if callback != nil {
						callback()
					}
					continue
				}
				mu.Unlock()
			case gohook.KeyUp:
				mu.Lock()
				if i := match(ev.Rawcode); i >= 0 {
					states[i].pressed = false
				}
				mu.Unlock()
			}
		}
		log.Printf("Hotkey: event channel closed")
	}()
}

// parseCombo splits "Ctrl+Alt+q" into normalized key names.
func parseCombo(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "win" || part == "super" {
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

// rawcodesFor maps a key name to its virtual-key rawcodes. Modifiers map
// to both left and right variants.
func rawcodesFor(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))

	switch name {
	case "ctrl":
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case "alt":
		return []uint16{164, 165} // VK_LMENU, VK_RMENU
	case "shift":
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case "cmd":
		return []uint16{91, 92} // VK_LWIN, VK_RWIN
	case "space":
		return []uint16{32}
	case "enter", "return":
		return []uint16{13}
	case "esc", "escape":
		return []uint16{27}
	case "tab":
		return []uint16{9}
	case "backspace":
		return []uint16{8}
	case "delete", "del":
		return []uint16{46}
	case "insert", "ins":
		return []uint16{45}
	case "home":
		return []uint16{36}
	case "end":
		return []uint16{35}
	case "pageup", "pgup":
		return []uint16{33}
	case "pagedown", "pgdn":
		return []uint16{34}
	case "left":
		return []uint16{37}
	case "up":
		return []uint16{38}
	case "right":
		return []uint16{39}
	case "down":
		return []uint16{40}
	}

	// Letters a-z: VK 0x41-0x5A. Digits 0-9: VK 0x30-0x39.
	if len(name) == 1 {
		c := name[0]
		if c >= 'a' && c <= 'z' {
			return []uint16{uint16(c-'a') + 65}
		}
		if c >= '0' && c <= '9' {
			return []uint16{uint16(c-'0') + 48}
		}
	}

	// Function keys f1-f24: VK 0x70 onward.
	if strings.HasPrefix(name, "f") {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(n-1) + 112}
		}
	}

	log.Printf("Hotkey: unknown key name %q", name)
	return nil
}
