package registry

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"spellpaste/src/spell"
)

// NotFoundError reports an invoke on an unregistered trigger.
type NotFoundError struct {
	Trigger string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("spell %q not found", e.Trigger)
}

// Registry is the in-memory trigger→spell mapping. Refreshes replace the
// whole collection atomically; readers see either the old set or the new
// set, never a mix.
type Registry struct {
	mu     sync.RWMutex
	spells map[string]spell.Spell
}

func New() *Registry {
	return &Registry{spells: make(map[string]spell.Spell)}
}

// Replace swaps in a new spell collection wholesale. Duplicate triggers
// keep the first occurrence, matching collection load order.
func (r *Registry) Replace(spells []spell.Spell) {
	next := make(map[string]spell.Spell, len(spells))
	for _, s := range spells {
		if _, dup := next[s.Trigger]; dup {
			log.Printf("Registry: duplicate trigger %q ignored", s.Trigger)
			continue
		}
		next[s.Trigger] = s
	}

	r.mu.Lock()
	r.spells = next
	r.mu.Unlock()
	log.Printf("Registry: loaded %d spells", len(next))
}

// Lookup resolves a trigger. The returned spell is a copy.
func (r *Registry) Lookup(trigger string) (spell.Spell, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.spells[trigger]
	if !ok {
		return spell.Spell{}, NotFoundError{Trigger: trigger}
	}
	return s, nil
}

// List returns a snapshot of trigger/description pairs sorted by trigger.
func (r *Registry) List() []spell.Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]spell.Info, 0, len(r.spells))
	for _, s := range r.spells {
		infos = append(infos, spell.Info{Trigger: s.Trigger, Description: s.Description})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Trigger < infos[j].Trigger })
	return infos
}

// Len reports the number of registered spells.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.spells)
}
