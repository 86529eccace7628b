package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellpaste/src/spell"
)

func TestLookup(t *testing.T) {
	r := New()
	r.Replace([]spell.Spell{
		{Trigger: "hello", Entry: "echo Hello, World!", OutputMode: spell.OutputClipboard},
	})

	s, err := r.Lookup("hello")
	require.NoError(t, err)
	assert.Equal(t, "echo Hello, World!", s.Entry)
}

func TestLookupNotFound(t *testing.T) {
	r := New()

	_, err := r.Lookup("missing")
	require.Error(t, err)
	var nf NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.Trigger)
	assert.Equal(t, `spell "missing" not found`, err.Error())
}

func TestListSortedSnapshot(t *testing.T) {
	r := New()
	r.Replace([]spell.Spell{
		{Trigger: "zeta"},
		{Trigger: "alpha", Description: "first"},
		{Trigger: "mid"},
	})

	infos := r.List()
	require.Len(t, infos, 3)
	assert.Equal(t, "alpha", infos[0].Trigger)
	assert.Equal(t, "first", infos[0].Description)
	assert.Equal(t, "mid", infos[1].Trigger)
	assert.Equal(t, "zeta", infos[2].Trigger)
}

func TestReplaceKeepsFirstDuplicate(t *testing.T) {
	r := New()
	r.Replace([]spell.Spell{
		{Trigger: "dup", Entry: "first"},
		{Trigger: "dup", Entry: "second"},
	})

	s, err := r.Lookup("dup")
	require.NoError(t, err)
	assert.Equal(t, "first", s.Entry)
	assert.Equal(t, 1, r.Len())
}

// TestReplaceIsAtomic drives concurrent List calls against wholesale
// replaces of differently sized sets; every observation must be one
// complete generation, never a mix.
func TestReplaceIsAtomic(t *testing.T) {
	old := make([]spell.Spell, 5)
	for i := range old {
		old[i] = spell.Spell{Trigger: fmt.Sprintf("old-%d", i)}
	}
	next := make([]spell.Spell, 9)
	for i := range next {
		next[i] = spell.Spell{Trigger: fmt.Sprintf("new-%d", i)}
	}

	r := New()
	r.Replace(old)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			infos := r.List()
			if len(infos) != len(old) && len(infos) != len(next) {
				t.Errorf("observed mixed generation of %d spells", len(infos))
				return
			}
		}
	}()

	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			r.Replace(next)
		} else {
			r.Replace(old)
		}
	}
	close(done)
	wg.Wait()
}
